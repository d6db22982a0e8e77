package prompt

import (
	"fmt"

	"hearth-chat-be/internal/chat/emotion"
)

// strategy is the fixed (tone, approach) pair for one declared emotion.
type strategy struct {
	tone     string
	approach string
}

var strategies = map[string]strategy{
	"happy":      {"밝고 경쾌한 톤으로 대답하세요.", "사용자의 기쁨에 함께 공감하며 대화를 이어가세요."},
	"excited":    {"활기찬 톤으로 대답하세요.", "사용자의 설렘을 함께 나누며 호응해주세요."},
	"joyful":     {"따뜻하고 즐거운 톤으로 대답하세요.", "기쁜 순간을 함께 축하해주세요."},
	"sad":        {"부드럽고 차분한 톤으로 대답하세요.", "사용자의 슬픔을 충분히 공감하고 위로해주세요."},
	"depressed":  {"조용하고 안정적인 톤으로 대답하세요.", "무리하게 해결책을 제시하지 말고 곁에 있어주세요."},
	"melancholy": {"잔잔하고 따뜻한 톤으로 대답하세요.", "사용자의 감정을 있는 그대로 받아들여주세요."},
	"angry":      {"차분하고 중립적인 톤으로 대답하세요.", "사용자의 화를 인정하고 상황을 정리하도록 도와주세요."},
	"frustrated": {"침착한 톤으로 대답하세요.", "답답함의 원인을 함께 짚어보며 실마리를 찾아주세요."},
	"irritated":  {"낮고 안정적인 톤으로 대답하세요.", "자극하지 않도록 주의하며 공감해주세요."},
	"anxious":    {"안심시키는 톤으로 대답하세요.", "걱정을 구체화해서 하나씩 덜어주세요."},
	"worried":    {"다정한 톤으로 대답하세요.", "걱정하는 마음을 인정하고 현실적인 시각을 더해주세요."},
	"fearful":    {"안정적이고 신뢰감 있는 톤으로 대답하세요.", "두려움을 과장하지 말고 차근차근 안심시켜주세요."},
	"neutral":    {"자연스럽고 친근한 톤으로 대답하세요.", "사용자의 이야기에 귀 기울여주세요."},
	"calm":       {"편안한 톤으로 대답하세요.", "차분한 분위기를 유지하며 대화해주세요."},
	"peaceful":   {"평온한 톤으로 대답하세요.", "여유로운 분위기에 맞춰 대화해주세요."},
}

var defaultStrategy = strategy{"자연스럽고 친근한 톤으로 대답하세요.", "사용자의 이야기에 귀 기울여주세요."}

const (
	improvingSuffix = " 사용자의 기분이 점점 나아지고 있으니 긍정적인 흐름을 이어가세요."
	decliningSuffix = " 사용자의 기분이 가라앉고 있으니 평소보다 더 따뜻하게 대해주세요."

	// Shown when documents are attached but the selected provider cannot
	// consume them.
	documentsUnsupportedNotice = " 사용자가 문서를 첨부했지만 현재 AI 제공자는 문서 질의를 지원하지 않습니다. 문서 내용 없이 답변하고, 문서 질의는 Lily 제공자를 선택하도록 안내해주세요."
)

// Input is everything Compose needs for one turn.
type Input struct {
	Text         string
	Emotion      string
	Trend        string
	HasDocuments bool
	// DocumentsSupported is false when documents are present but the
	// selected provider cannot take them.
	DocumentsSupported bool
}

// Compose builds the provider-agnostic prompt for one user turn. It is
// deterministic and stateless.
func Compose(in Input) string {
	s, ok := strategies[in.Emotion]
	if !ok {
		s = defaultStrategy
	}

	suffix := ""
	switch in.Trend {
	case emotion.TrendImproving:
		suffix = improvingSuffix
	case emotion.TrendDeclining:
		suffix = decliningSuffix
	}

	if in.HasDocuments && !in.DocumentsSupported {
		suffix += documentsUnsupportedNotice
	}

	return fmt.Sprintf("%s %s%s\n\n사용자 메시지: %s", s.tone, s.approach, suffix, in.Text)
}
