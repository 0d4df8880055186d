package scrape

import "github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"

// commentFieldMap names the provider's per-comment text and author fields.
type commentFieldMap struct {
	text   string
	author string
}

// expandComments fans one scraped post out into one raw mention per comment,
// carrying the post's fields alongside the comment under the canonical
// commentText/commentAuthor keys. A post with no comments yields a single
// bare-post mention; a post never yields nothing.
func expandComments(items []map[string]any, platform, commentsKey string, fields commentFieldMap, limit int) []models.RawMention {
	var mentions []models.RawMention

	for _, item := range items {
		comments, _ := item[commentsKey].([]any)

		emitted := 0
		for _, c := range comments {
			if emitted >= limit {
				break
			}
			comment, ok := c.(map[string]any)
			if !ok {
				continue
			}

			merged := make(map[string]any, len(item)+2)
			for k, v := range item {
				if k == commentsKey {
					continue
				}
				merged[k] = v
			}
			merged["commentText"] = stringField(comment, fields.text)
			merged["commentAuthor"] = stringField(comment, fields.author)

			mentions = append(mentions, models.RawMention{Platform: platform, Fields: merged})
			emitted++
		}

		if emitted == 0 {
			mentions = append(mentions, models.RawMention{Platform: platform, Fields: item})
		}
	}

	return mentions
}
