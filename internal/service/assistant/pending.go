package assistant

import (
	"context"
	"sync"

	"github.com/zhouzirui/care-companion/backend/internal/model/chat"
)

// PendingReply is a bot reply that has been scheduled but may not be appended yet.
type PendingReply struct {
	done chan struct{}
	once sync.Once
	msg  chat.Message
	err  error
}

func newPendingReply() *PendingReply {
	return &PendingReply{done: make(chan struct{})}
}

func (p *PendingReply) resolve(msg chat.Message, err error) {
	p.once.Do(func() {
		p.msg = msg
		p.err = err
		close(p.done)
	})
}

// Done is closed once the reply has been appended (or failed to be).
func (p *PendingReply) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the reply is available or ctx ends. A cancelled wait does
// not cancel the reply itself.
func (p *PendingReply) Wait(ctx context.Context) (chat.Message, error) {
	select {
	case <-p.done:
		return p.msg, p.err
	case <-ctx.Done():
		return chat.Message{}, ctx.Err()
	}
}

// OnComplete runs fn in its own goroutine once the reply resolves.
func (p *PendingReply) OnComplete(fn func(chat.Message, error)) {
	go func() {
		<-p.done
		fn(p.msg, p.err)
	}()
}
