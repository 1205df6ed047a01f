package reply

import (
	"strings"

	"github.com/zhouzirui/care-companion/backend/internal/analysis/emotion"
)

// Reply 是一条预设的助手回复及其展示情绪。
type Reply struct {
	Text    string        `json:"text"`
	Emotion emotion.Label `json:"emotion"`
}

const (
	sympathyText      = "I'm sorry you're feeling down. Would you like me to play some of your favorite music or call a family member?"
	breathingText     = "I can see you're feeling anxious. Remember the breathing exercises Dr. Johnson recommended? Let's try those together."
	affirmationText   = "It's wonderful to hear you're in good spirits! Would you like to share what's made your day better?"
	clarificationText = "I might not have explained that clearly. Let me try again. What specifically is confusing you?"
	fatigueText       = "I understand you're feeling tired. Have you been getting enough rest? Your sleep tracker shows you were restless last night. Would you like me to adjust the room temperature?"
	painText          = "I'm sorry you're in pain. Is it your arthritis again? I've noted this in your health log. Should I schedule a check-in with Dr. Johnson or remind you to take your anti-inflammatory medication?"
	companionshipText = "I understand feeling lonely can be difficult. Your daughter Sarah is available for a video call today. Would you like me to connect you? Or we could look at some of your family photos together."
	medicationText    = "Your next medication is due at 2:00 PM. That's your blood pressure pill and vitamin D supplement. Would you like me to remind you when it's time?"
	engagementText    = "I'm here to help and keep you company, Martha. Would you like to talk about your plans for today? Your calendar shows your granddaughter Emma is visiting this weekend."
)

// emotionReplies 只看情绪，不看文本内容。
var emotionReplies = []struct {
	when  emotion.Label
	reply Reply
}{
	{when: emotion.Sad, reply: Reply{Text: sympathyText, Emotion: emotion.Sad}},
	{when: emotion.Anxious, reply: Reply{Text: breathingText, Emotion: emotion.Neutral}},
	{when: emotion.Happy, reply: Reply{Text: affirmationText, Emotion: emotion.Happy}},
	{when: emotion.Confused, reply: Reply{Text: clarificationText, Emotion: emotion.Neutral}},
}

// topicReplies 在没有情绪规则命中时，按顺序匹配小写后的文本。
var topicReplies = []struct {
	keywords []string
	reply    Reply
}{
	{keywords: []string{"tired", "sleepy"}, reply: Reply{Text: fatigueText, Emotion: emotion.Neutral}},
	{keywords: []string{"pain", "hurt"}, reply: Reply{Text: painText, Emotion: emotion.Sad}},
	{keywords: []string{"lonely", "alone"}, reply: Reply{Text: companionshipText, Emotion: emotion.Sad}},
	{keywords: []string{"medicine", "medication", "pill"}, reply: Reply{Text: medicationText, Emotion: emotion.Neutral}},
}

var defaultReply = Reply{Text: engagementText, Emotion: emotion.Happy}

// Respond 根据文本及其情绪选择预设回复。
func Respond(text string, label emotion.Label) Reply {
	for _, r := range emotionReplies {
		if r.when == label {
			return r.reply
		}
	}

	lowered := strings.ToLower(text)
	for _, r := range topicReplies {
		if emotion.ContainsAny(lowered, r.keywords...) {
			return r.reply
		}
	}
	return defaultReply
}
