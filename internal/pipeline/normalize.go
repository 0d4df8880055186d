package pipeline

import (
	"fmt"
	"strings"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
)

// Fallback strings used when a raw record carries no usable fields.
const (
	NoContent     = "No content available"
	UnknownAuthor = "Unknown"
)

// fieldTable is the per-platform precedence order for mapping raw provider
// fields onto the canonical record. The order is load-bearing: it decides
// what text enters downstream prompts. Keys containing dots traverse nested
// objects.
type fieldTable struct {
	comment []string // per-comment text keys; empty for flat-record platforms
	post    []string
	author  []string
}

var fieldTables = map[string]fieldTable{
	models.PlatformTwitter: {
		post:   []string{"text", "full_text", "fullText"},
		author: []string{"author.userName", "author.name", "username", "user.screen_name"},
	},
	models.PlatformReddit: {
		post:   []string{"body", "selftext", "title"},
		author: []string{"author", "username", "redditorName"},
	},
	models.PlatformInstagram: {
		comment: []string{"commentText"},
		post:    []string{"caption", "text"},
		author:  []string{"commentAuthor", "ownerUsername", "username"},
	},
	models.PlatformTikTok: {
		comment: []string{"commentText"},
		post:    []string{"text", "desc"},
		author:  []string{"commentAuthor", "authorMeta.name", "authorUsername"},
	},
	models.PlatformFacebook: {
		comment: []string{"commentText"},
		post:    []string{"text", "message", "postText"},
		author:  []string{"commentAuthor", "pageName", "user.name"},
	},
}

// genericTable handles records from platforms without a dedicated mapping.
var genericTable = fieldTable{
	post:   []string{"text", "body", "message", "title"},
	author: []string{"author", "username", "user.name"},
}

// Normalize converts one raw provider record into the canonical mention
// shape. It is pure and total: every input yields a record, falling back to
// placeholder strings when fields are missing. An already-normalized record
// short-circuits on its canonical fields, so normalization is idempotent.
func Normalize(raw models.RawMention) models.NormalizedMention {
	table, ok := fieldTables[raw.Platform]
	if !ok {
		table = genericTable
	}

	content := lookupField(raw.Fields, "content")
	if content == "" {
		content = synthesizeContent(raw.Fields, table)
	}

	author := lookupField(raw.Fields, "author")
	if author == "" {
		author = firstField(raw.Fields, table.author)
	}
	if author == "" {
		author = UnknownAuthor
	}

	return models.NormalizedMention{
		Content:  content,
		Author:   author,
		Platform: raw.Platform,
		Fields:   raw.Fields,
	}
}

// NormalizeAll normalizes a batch, preserving order.
func NormalizeAll(raw []models.RawMention) []models.NormalizedMention {
	out := make([]models.NormalizedMention, len(raw))
	for i, r := range raw {
		out[i] = Normalize(r)
	}
	return out
}

// synthesizeContent applies the post+comment synthesis rule: both present
// yields "Post: {post}\n\nComment: {comment}", then comment-only, post-only,
// and finally the no-content placeholder.
func synthesizeContent(fields map[string]any, table fieldTable) string {
	post := firstField(fields, table.post)
	comment := firstField(fields, table.comment)

	switch {
	case post != "" && comment != "":
		return fmt.Sprintf("Post: %s\n\nComment: %s", post, comment)
	case comment != "":
		return comment
	case post != "":
		return post
	default:
		return NoContent
	}
}

func firstField(fields map[string]any, keys []string) string {
	for _, key := range keys {
		if v := lookupField(fields, key); v != "" {
			return v
		}
	}
	return ""
}

// lookupField resolves a possibly dotted path against nested provider maps.
func lookupField(fields map[string]any, path string) string {
	var cur any = fields
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[part]
	}

	s, _ := cur.(string)
	return strings.TrimSpace(s)
}
