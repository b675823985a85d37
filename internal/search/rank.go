package search

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/slug"
)

// Score weights.
const (
	phraseInTitle = 12
	tokenInTitle  = 5
	tokenInTags   = 4
	tokenSummary  = 3
	contentCap    = 5
	allTokensHit  = 3
	recencyMax    = 4.0
)

type Result struct {
	Post  *models.Post `json:"post"`
	Score float64      `json:"score"`
}

type Topic struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Score ranks p for the tokenized query. phr is the normalized full query.
func Score(p *models.Post, tokens []string, phr string, now time.Time) float64 {
	title := phrase(p.Title)
	summary := slug.Fold(p.Summary)
	content := slug.Fold(p.Content)
	tags := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = slug.Fold(t)
	}

	score := 0.0
	if phr != "" && strings.Contains(title, phr) {
		score += phraseInTitle
	}
	matched := 0
	for _, tok := range tokens {
		hit := false
		if strings.Contains(title, tok) {
			score += tokenInTitle
			hit = true
		}
		for _, tag := range tags {
			if strings.Contains(tag, tok) {
				score += tokenInTags
				hit = true
				break
			}
		}
		if strings.Contains(summary, tok) {
			score += tokenSummary
			hit = true
		}
		if n := strings.Count(content, tok); n > 0 {
			if n > contentCap {
				n = contentCap
			}
			score += float64(n)
			hit = true
		}
		if hit {
			matched++
		}
	}
	if len(tokens) > 0 && matched == len(tokens) {
		score += allTokensHit
	}
	score += recency(p.PublishedAt, now)
	return math.Round(score*1000) / 1000
}

// recency decays from recencyMax with a one-week half-life-like curve.
func recency(published *time.Time, now time.Time) float64 {
	if published == nil {
		return 0
	}
	ageDays := now.Sub(*published).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return recencyMax / (1 + ageDays/7)
}

// Rank scores every post and orders by score, then newest first.
func Rank(list []*models.Post, tokens []string, phr string, now time.Time) []Result {
	out := make([]Result, len(list))
	for i, p := range list {
		out[i] = Result{Post: p, Score: Score(p, tokens, phr, now)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		a, b := publishedOf(out[i].Post), publishedOf(out[j].Post)
		if !a.Equal(b) {
			return a.After(b)
		}
		return out[i].Post.ID < out[j].Post.ID
	})
	return out
}

func publishedOf(p *models.Post) time.Time {
	if p.PublishedAt == nil {
		return time.Time{}
	}
	return *p.PublishedAt
}

// Topics counts tags and section names across results and returns the top
// max, most frequent first then by name.
func Topics(results []Result, sectionNames map[string]string, max int) []Topic {
	counts := map[string]int{}
	for _, r := range results {
		seen := map[string]bool{}
		names := append([]string{}, r.Post.Tags...)
		if name := sectionNames[r.Post.SectionID]; name != "" {
			names = append(names, name)
		}
		for _, n := range names {
			key := strings.ToLower(strings.TrimSpace(n))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			counts[key]++
		}
	}
	out := make([]Topic, 0, len(counts))
	for name, n := range counts {
		out = append(out, Topic{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > max {
		out = out[:max]
	}
	return out
}
