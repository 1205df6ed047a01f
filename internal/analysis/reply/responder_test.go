package reply

import (
	"context"
	"testing"

	"github.com/zhouzirui/care-companion/backend/internal/analysis/emotion"
)

func TestRespondSadIgnoresText(t *testing.T) {
	for _, text := range []string{"", "hello", "my medication", "I am tired"} {
		got := Respond(text, emotion.Sad)
		if got.Emotion != emotion.Sad {
			t.Fatalf("Respond(%q, sad) emotion = %s, want sad", text, got.Emotion)
		}
		if got.Text != sympathyText {
			t.Fatalf("Respond(%q, sad) returned %q", text, got.Text)
		}
	}
}

func TestRespondEmotionTable(t *testing.T) {
	cases := []struct {
		label       emotion.Label
		wantText    string
		wantEmotion emotion.Label
	}{
		{emotion.Anxious, breathingText, emotion.Neutral},
		{emotion.Happy, affirmationText, emotion.Happy},
		{emotion.Confused, clarificationText, emotion.Neutral},
	}

	for _, tc := range cases {
		got := Respond("I hurt my knee", tc.label)
		if got.Text != tc.wantText || got.Emotion != tc.wantEmotion {
			t.Fatalf("Respond(_, %s) = %+v", tc.label, got)
		}
	}
}

func TestRespondNeutralTopics(t *testing.T) {
	cases := []struct {
		text        string
		wantText    string
		wantEmotion emotion.Label
	}{
		{"I'm so sleepy", fatigueText, emotion.Neutral},
		{"My arthritis is bothering me, the PAIN", painText, emotion.Sad},
		{"I am home alone", companionshipText, emotion.Sad},
		{"I forgot my medication", medicationText, emotion.Neutral},
		{"where is my pill box", medicationText, emotion.Neutral},
		{"hello", engagementText, emotion.Happy},
		{"", engagementText, emotion.Happy},
	}

	for _, tc := range cases {
		got := Respond(tc.text, emotion.Neutral)
		if got.Text != tc.wantText || got.Emotion != tc.wantEmotion {
			t.Fatalf("Respond(%q, neutral) = %+v", tc.text, got)
		}
	}
}

func TestRespondTopicOrder(t *testing.T) {
	got := Respond("tired and in pain", emotion.Neutral)
	if got.Text != fatigueText {
		t.Fatalf("expected fatigue reply to win, got %q", got.Text)
	}
}

func TestPipelineRun(t *testing.T) {
	ctx := context.Background()
	p, err := NewPipeline(ctx)
	if err != nil {
		t.Fatalf("NewPipeline err: %v", err)
	}

	turn, err := p.Run(ctx, "I'm feeling a bit lonely today")
	if err != nil {
		t.Fatalf("Run err: %v", err)
	}
	if turn.UserEmotion != emotion.Sad {
		t.Fatalf("expected sad, got %s", turn.UserEmotion)
	}
	if turn.Reply.Text != sympathyText {
		t.Fatalf("unexpected reply %q", turn.Reply.Text)
	}

	turn, err = p.Run(ctx, "I forgot to take my medication")
	if err != nil {
		t.Fatalf("Run err: %v", err)
	}
	if turn.UserEmotion != emotion.Neutral || turn.Reply.Text != medicationText {
		t.Fatalf("unexpected turn %+v", turn)
	}
}

func TestPipelineMatchesEvaluate(t *testing.T) {
	ctx := context.Background()
	p, err := NewPipeline(ctx)
	if err != nil {
		t.Fatalf("NewPipeline err: %v", err)
	}

	for _, text := range []string{"", "hello", "I'm scared", "what do you mean", "great news"} {
		got, err := p.Run(ctx, text)
		if err != nil {
			t.Fatalf("Run(%q) err: %v", text, err)
		}
		if want := Evaluate(text); got != want {
			t.Fatalf("Run(%q) = %+v, want %+v", text, got, want)
		}
	}
}
