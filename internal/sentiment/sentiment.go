// Package sentiment scores chat messages and aggregates them into per-player
// and per-match summaries.
package sentiment

import (
	"math"
	"strings"

	"github.com/stattrak/demotrak/internal/model"
)

// Dominant sentiment labels.
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
	LabelNeutral  = "NEUTRAL"
	LabelMixed    = "MIXED"
)

// Score is one scored piece of text. The four probabilities sum to 1.
type Score struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Mixed    float64 `json:"mixed"`
	Dominant string  `json:"dominant"`
}

// Analyzer scores free text. The keyword scorer is the default
// implementation; a hosted NLP backend can be swapped in without touching
// the aggregation code.
type Analyzer interface {
	Analyze(text string) Score
}

// Default keyword lists for the fallback scorer.
var (
	DefaultToxicKeywords = []string{
		"noob", "trash", "garbage", "idiot", "stupid", "dumb", "suck",
		"bad", "worst", "terrible", "awful", "hate", "kill yourself",
		"kys", "ez", "gg ez", "uninstall", "delete", "report", "kick",
	}
	DefaultPositiveKeywords = []string{
		"nice", "good", "great", "well done", "wp", "gj", "good job",
		"nt", "nice try", "thanks", "ty", "awesome", "sick", "insane",
		"gg", "glhf", "gl",
	}
)

// KeywordScorer is the offline fallback analyzer. It counts case-insensitive
// substring matches from both lists and maps the comparison onto one of
// three fixed score profiles.
type KeywordScorer struct {
	toxic    []string
	positive []string
}

// NewKeywordScorer builds a scorer from keyword lists; nil lists fall back
// to the defaults.
func NewKeywordScorer(toxic, positive []string) *KeywordScorer {
	if toxic == nil {
		toxic = DefaultToxicKeywords
	}
	if positive == nil {
		positive = DefaultPositiveKeywords
	}
	lower := func(in []string) []string {
		out := make([]string, len(in))
		for i, s := range in {
			out[i] = strings.ToLower(s)
		}
		return out
	}
	return &KeywordScorer{toxic: lower(toxic), positive: lower(positive)}
}

// Analyze scores a message. Empty or whitespace-only text is fully neutral.
func (k *KeywordScorer) Analyze(text string) Score {
	if strings.TrimSpace(text) == "" {
		return Score{Neutral: 1, Dominant: LabelNeutral}
	}
	lower := strings.ToLower(text)
	count := func(keywords []string) int {
		n := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				n++
			}
		}
		return n
	}
	toxic, positive := count(k.toxic), count(k.positive)
	switch {
	case toxic > positive:
		return Score{Positive: 0.1, Negative: 0.7, Neutral: 0.15, Mixed: 0.05, Dominant: LabelNegative}
	case positive > toxic:
		return Score{Positive: 0.7, Negative: 0.1, Neutral: 0.15, Mixed: 0.05, Dominant: LabelPositive}
	default:
		return Score{Positive: 0.2, Negative: 0.2, Neutral: 0.5, Mixed: 0.1, Dominant: LabelNeutral}
	}
}

// MessageScore is one chat message with its score attached.
type MessageScore struct {
	Tick       int    `json:"tick"`
	PlayerID   uint64 `json:"player_steam_id,string"`
	PlayerName string `json:"player_name"`
	Message    string `json:"message"`
	Score      Score  `json:"score"`
}

// PlayerSummary aggregates one player's chat for one match.
type PlayerSummary struct {
	PlayerID            uint64  `json:"player_steam_id,string"`
	PlayerName          string  `json:"player_name"`
	MessageCount        int     `json:"message_count"`
	AvgPositive         float64 `json:"avg_positive"`
	AvgNegative         float64 `json:"avg_negative"`
	AvgNeutral          float64 `json:"avg_neutral"`
	AvgMixed            float64 `json:"avg_mixed"`
	DominantSentiment   string  `json:"dominant_sentiment"`
	MostNegativeMessage string  `json:"most_negative_message,omitempty"`
	MostPositiveMessage string  `json:"most_positive_message,omitempty"`
}

// MatchSummary is the full chat sentiment picture for one match.
type MatchSummary struct {
	MatchID            string          `json:"match_id"`
	TotalMessages      int             `json:"total_messages"`
	Players            []PlayerSummary `json:"player_sentiments"`
	Messages           []MessageScore  `json:"message_sentiments"`
	Overall            Score           `json:"overall_sentiment"`
	ToxicityScore      float64         `json:"toxicity_score"` // % of messages with negative > 0.4
	MostToxicPlayer    uint64          `json:"most_toxic_player,string,omitempty"`
	MostPositivePlayer uint64          `json:"most_positive_player,string,omitempty"`
}

// AnalyzeMatch scores every chat message of a match and rolls the results
// up per player and match-wide. No messages yields a neutral summary, not
// an error.
func AnalyzeMatch(matchID string, messages []model.ChatMessage, an Analyzer) MatchSummary {
	if an == nil {
		an = NewKeywordScorer(nil, nil)
	}
	out := MatchSummary{MatchID: matchID}
	if len(messages) == 0 {
		out.Overall = Score{Neutral: 1, Dominant: LabelNeutral}
		return out
	}

	byPlayer := make(map[uint64][]MessageScore)
	var playerOrder []uint64
	for _, msg := range messages {
		ms := MessageScore{
			Tick:       msg.Tick,
			PlayerID:   msg.PlayerID,
			PlayerName: msg.PlayerName,
			Message:    msg.Message,
			Score:      an.Analyze(msg.Message),
		}
		out.Messages = append(out.Messages, ms)
		if _, seen := byPlayer[msg.PlayerID]; !seen {
			playerOrder = append(playerOrder, msg.PlayerID)
		}
		byPlayer[msg.PlayerID] = append(byPlayer[msg.PlayerID], ms)
	}
	out.TotalMessages = len(out.Messages)

	for _, id := range playerOrder {
		msgs := byPlayer[id]
		var pos, neg, neu, mix float64
		mostNeg, mostPos := msgs[0], msgs[0]
		for _, m := range msgs {
			pos += m.Score.Positive
			neg += m.Score.Negative
			neu += m.Score.Neutral
			mix += m.Score.Mixed
			if m.Score.Negative > mostNeg.Score.Negative {
				mostNeg = m
			}
			if m.Score.Positive > mostPos.Score.Positive {
				mostPos = m
			}
		}
		n := float64(len(msgs))
		p := PlayerSummary{
			PlayerID:          id,
			PlayerName:        msgs[0].PlayerName,
			MessageCount:      len(msgs),
			AvgPositive:       round3(pos / n),
			AvgNegative:       round3(neg / n),
			AvgNeutral:        round3(neu / n),
			AvgMixed:          round3(mix / n),
			DominantSentiment: dominantOf(pos/n, neg/n, neu/n, mix/n),
		}
		if mostNeg.Score.Negative > 0.3 {
			p.MostNegativeMessage = mostNeg.Message
		}
		if mostPos.Score.Positive > 0.3 {
			p.MostPositiveMessage = mostPos.Message
		}
		out.Players = append(out.Players, p)
	}

	var pos, neg, neu, mix float64
	toxicCount := 0
	for _, m := range out.Messages {
		pos += m.Score.Positive
		neg += m.Score.Negative
		neu += m.Score.Neutral
		mix += m.Score.Mixed
		if m.Score.Negative > 0.4 {
			toxicCount++
		}
	}
	n := float64(len(out.Messages))
	out.Overall = Score{
		Positive: round3(pos / n),
		Negative: round3(neg / n),
		Neutral:  round3(neu / n),
		Mixed:    round3(mix / n),
		Dominant: dominantOf(pos/n, neg/n, neu/n, mix/n),
	}
	out.ToxicityScore = round1(float64(toxicCount) / n * 100)

	var mostToxic, mostPositive *PlayerSummary
	for i := range out.Players {
		p := &out.Players[i]
		if mostToxic == nil || p.AvgNegative > mostToxic.AvgNegative {
			mostToxic = p
		}
		if mostPositive == nil || p.AvgPositive > mostPositive.AvgPositive {
			mostPositive = p
		}
	}
	// The extremes are only called out when clearly leaning that way.
	if mostToxic != nil && mostToxic.AvgNegative > 0.3 {
		out.MostToxicPlayer = mostToxic.PlayerID
	}
	if mostPositive != nil && mostPositive.AvgPositive > 0.3 {
		out.MostPositivePlayer = mostPositive.PlayerID
	}
	return out
}

// dominantOf picks the label with the highest average, checked in the
// fixed POSITIVE, NEGATIVE, NEUTRAL, MIXED order so ties resolve stably.
func dominantOf(pos, neg, neu, mix float64) string {
	best, label := pos, LabelPositive
	if neg > best {
		best, label = neg, LabelNegative
	}
	if neu > best {
		best, label = neu, LabelNeutral
	}
	if mix > best {
		label = LabelMixed
	}
	return label
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
