package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/care-companion/backend/internal/analysis/reply"
	"github.com/zhouzirui/care-companion/backend/internal/config"
	"github.com/zhouzirui/care-companion/backend/internal/model/resident"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	text := flag.String("text", "", "单条输入文本，留空则逐行读取标准输入")
	asJSON := flag.Bool("json", false, "以 JSON 行输出结果")
	suggestions := flag.Bool("suggestions", false, "依次运行全部快捷回复")
	delay := flag.Bool("delay", false, "输出前按配置的回复延迟等待")
	timeout := flag.Duration("timeout", 30*time.Second, "整体超时时间")

	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pipeline, err := reply.NewPipeline(ctx)
	if err != nil {
		log.Fatalf("初始化回复管线失败: %v", err)
	}

	wait := time.Duration(0)
	if *delay {
		wait = cfg.Assistant.ReplyDelay
	}
	out := &printer{w: os.Stdout, json: *asJSON, wait: wait}

	switch {
	case *suggestions:
		for _, s := range resident.Suggestions() {
			if err := run(ctx, pipeline, out, s); err != nil {
				log.Fatalf("运行失败: %v", err)
			}
		}
	case strings.TrimSpace(*text) != "":
		if err := run(ctx, pipeline, out, *text); err != nil {
			log.Fatalf("运行失败: %v", err)
		}
	default:
		if err := runLines(ctx, pipeline, out, os.Stdin); err != nil {
			log.Fatalf("读取输入失败: %v", err)
		}
	}
}

func runLines(ctx context.Context, pipeline *reply.Pipeline, out *printer, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := run(ctx, pipeline, out, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func run(ctx context.Context, pipeline *reply.Pipeline, out *printer, text string) error {
	turn, err := pipeline.Run(ctx, text)
	if err != nil {
		return err
	}
	if out.wait > 0 {
		select {
		case <-time.After(out.wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return out.print(turn)
}

type printer struct {
	w    io.Writer
	json bool
	wait time.Duration
}

func (p *printer) print(turn reply.Turn) error {
	if p.json {
		return json.NewEncoder(p.w).Encode(turn)
	}
	_, err := fmt.Fprintf(p.w, "you [%s]: %s\nbot [%s]: %s\n\n", turn.UserEmotion, turn.Input, turn.Reply.Emotion, turn.Reply.Text)
	return err
}
