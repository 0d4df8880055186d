package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
)

const topHashtagLimit = 20

var hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// Aggregate computes the platform distribution, sentiment distribution, and
// hashtag ranking over an enhanced mention set. Pure, no failure mode.
//
// Mentions with a nil sentiment are tallied as neutral; this is a display
// convention only, the mention's own field keeps its nil state.
func Aggregate(mentions []models.EnhancedMention) *models.AggregateResult {
	result := &models.AggregateResult{
		TotalMentions:  len(mentions),
		PlatformCounts: make(map[string]int),
	}

	hashtagCounts := make(map[string]int)
	var hashtagOrder []string

	for _, mention := range mentions {
		result.PlatformCounts[mention.Platform]++

		switch {
		case mention.Sentiment == nil:
			result.SentimentCounts.Neutral++
		case *mention.Sentiment == models.SentimentPositive:
			result.SentimentCounts.Positive++
		case *mention.Sentiment == models.SentimentNegative:
			result.SentimentCounts.Negative++
		default:
			result.SentimentCounts.Neutral++
		}

		for _, match := range hashtagRe.FindAllStringSubmatch(mention.Content, -1) {
			tag := strings.ToLower(match[1])
			if hashtagCounts[tag] == 0 {
				hashtagOrder = append(hashtagOrder, tag)
			}
			hashtagCounts[tag]++
		}
	}

	// Descending by count; equal counts keep first-seen order.
	ranking := make([]models.HashtagCount, 0, len(hashtagOrder))
	for _, tag := range hashtagOrder {
		ranking = append(ranking, models.HashtagCount{Tag: tag, Count: hashtagCounts[tag]})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})
	if len(ranking) > topHashtagLimit {
		ranking = ranking[:topHashtagLimit]
	}
	result.TopHashtags = ranking

	return result
}
