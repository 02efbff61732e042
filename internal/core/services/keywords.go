package services

import (
	"regexp"
	"sort"
	"strings"
)

// MaxTopics is the number of topics extracted per document.
const MaxTopics = 10

var wordPattern = regexp.MustCompile(`[a-zA-Z]{3,}`)

// stopWords are common English words excluded from topics and vocabularies.
var stopWords = toSet(
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can",
	"had", "her", "was", "one", "our", "out", "day", "get", "has", "him",
	"his", "how", "man", "new", "now", "old", "see", "two", "way", "who",
	"boy", "did", "its", "let", "put", "say", "she", "too", "use", "that",
	"with", "have", "this", "will", "your", "from", "they", "know", "want",
	"been", "good", "much", "some", "time", "very", "when", "come", "here",
	"just", "like", "long", "make", "many", "over", "such", "take", "than",
	"them", "well", "were", "what", "which", "their", "there", "these",
	"those", "would", "could", "should", "about", "into", "also", "more",
	"most", "other", "only", "then", "each", "where", "while", "being",
	"does", "doing", "because", "between", "after", "before", "under",
	"again", "further", "once", "both", "same", "own", "off", "why",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// contentWords returns the lowercase words of text with stop words removed,
// in order of appearance.
func contentWords(text string) []string {
	matches := wordPattern.FindAllString(text, -1)
	out := matches[:0]
	for _, m := range matches {
		w := strings.ToLower(m)
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

type wordCount struct {
	word  string
	count int
	first int
}

// rankWords counts words and orders them by frequency, then by first
// appearance.
func rankWords(words []string) []wordCount {
	index := make(map[string]int)
	var counts []wordCount
	for i, w := range words {
		if j, ok := index[w]; ok {
			counts[j].count++
			continue
		}
		index[w] = len(counts)
		counts = append(counts, wordCount{word: w, count: 1, first: i})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].first < counts[j].first
	})
	return counts
}

// ExtractTopics returns up to MaxTopics key topics of text. The result is
// never nil so it can be stored as a computed derived value.
func ExtractTopics(text string) []string {
	ranked := rankWords(contentWords(text))
	topics := make([]string, 0, min(len(ranked), MaxTopics))
	for i := 0; i < len(ranked) && i < MaxTopics; i++ {
		topics = append(topics, ranked[i].word)
	}
	return topics
}

// vocabulary returns the set of content words in text.
func vocabulary(text string) map[string]struct{} {
	return toSet(contentWords(text)...)
}
