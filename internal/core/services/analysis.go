package services

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// Analysis constants.
const (
	wordsPerMinute    = 200
	maxTopWords       = 20
	maxCommonWords    = 10
	maxUniqueThemes   = 5
	bytesPerMegabyte  = 1024 * 1024
	largeCorpusWords  = 10000
	specificQsWords   = 5000
	cohesiveThemes    = 5
	easyReadability   = 60
	mediumReadability = 30
)

var (
	analysisWordPattern = regexp.MustCompile(`\w+`)
	sentenceSplit       = regexp.MustCompile(`[.!?]+`)
	datePatterns        = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`),
	}
	numberPattern      = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	emailPattern       = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	urlPattern         = regexp.MustCompile(`https?://[^\s<>"']+`)
	capitalizedPattern = regexp.MustCompile(`\b[A-Z][a-z]{2,}\b`)
)

// DocumentAnalyzer computes statistics over document text without any
// provider calls. Results depend only on the text.
type DocumentAnalyzer struct{}

// NewDocumentAnalyzer creates an analyzer.
func NewDocumentAnalyzer() *DocumentAnalyzer {
	return &DocumentAnalyzer{}
}

// Analyze returns the statistics of one document.
func (a *DocumentAnalyzer) Analyze(doc *domain.Document) *domain.DocumentAnalysis {
	words := analysisWords(doc.Content)

	topics := doc.Topics
	if len(topics) > MaxTopics {
		topics = topics[:MaxTopics]
	}

	return &domain.DocumentAnalysis{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Stats: domain.BasicStats{
			Characters: len([]rune(doc.Content)),
			Words:      len(words),
			Sentences:  len(sentences(doc.Content)),
			Paragraphs: countParagraphs(doc.Content),
		},
		Readability:    Readability(doc.Content),
		Entities:       ExtractEntities(doc.Content),
		TopWords:       topWords(words),
		Topics:         append([]string{}, topics...),
		ReadingMinutes: round(float64(len(words))/wordsPerMinute, 1),
	}
}

func analysisWords(text string) []string {
	words := analysisWordPattern.FindAllString(strings.ToLower(text), -1)
	if words == nil {
		return []string{}
	}
	return words
}

func sentences(text string) []string {
	var out []string
	for _, s := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func countParagraphs(text string) int {
	n := 0
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

func topWords(words []string) []domain.WordCount {
	var filtered []string
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		filtered = append(filtered, w)
	}
	ranked := rankWords(filtered)
	out := make([]domain.WordCount, 0, min(len(ranked), maxTopWords))
	for i := 0; i < len(ranked) && i < maxTopWords; i++ {
		out = append(out, domain.WordCount{Word: ranked[i].word, Count: ranked[i].count})
	}
	return out
}

// Readability computes a simplified Flesch reading-ease score:
// 206.835 - 1.015 * words per sentence - 84.6 * letters per word, clamped
// to [0, 100]. Text without words or sentences scores zero.
func Readability(text string) domain.Readability {
	sents := sentences(text)
	words := analysisWords(text)
	if len(sents) == 0 || len(words) == 0 {
		return domain.Readability{}
	}

	letters := 0
	for _, w := range words {
		letters += len([]rune(w))
	}
	avgSentence := float64(len(words)) / float64(len(sents))
	avgWord := float64(letters) / float64(len(words))
	score := 206.835 - 1.015*avgSentence - 84.6*avgWord

	return domain.Readability{
		FleschReadingEase: round(math.Max(0, math.Min(100, score)), 2),
		AvgSentenceLength: round(avgSentence, 2),
		AvgWordLength:     round(avgWord, 2),
		TotalSentences:    len(sents),
		TotalWords:        len(words),
	}
}

// ExtractEntities finds dates, numbers, emails, URLs and capitalised words.
// Capitalised words are distinct and in order of first appearance.
func ExtractEntities(text string) domain.Entities {
	var dates []string
	for _, p := range datePatterns {
		dates = append(dates, p.FindAllString(text, -1)...)
	}

	var capitalized []string
	for _, w := range capitalizedPattern.FindAllString(text, -1) {
		if !slices.Contains(capitalized, w) {
			capitalized = append(capitalized, w)
		}
	}

	return domain.Entities{
		Dates:            nonNil(dates),
		Numbers:          nonNil(numberPattern.FindAllString(text, -1)),
		Emails:           nonNil(emailPattern.FindAllString(text, -1)),
		URLs:             nonNil(urlPattern.FindAllString(text, -1)),
		CapitalizedWords: nonNil(capitalized),
	}
}

// Similarities returns the pairwise Jaccard similarity of the documents'
// content vocabularies, most similar pair first.
func (a *DocumentAnalyzer) Similarities(docs []domain.Document) []domain.Similarity {
	if len(docs) < 2 {
		return []domain.Similarity{}
	}

	vocabs := make([]map[string]struct{}, len(docs))
	for i := range docs {
		vocabs[i] = vocabulary(docs[i].Content)
	}

	out := []domain.Similarity{}
	for i := 0; i < len(docs); i++ {
		for j := i + 1; j < len(docs); j++ {
			if len(vocabs[i]) == 0 || len(vocabs[j]) == 0 {
				continue
			}
			var common []string
			for w := range vocabs[i] {
				if _, ok := vocabs[j][w]; ok {
					common = append(common, w)
				}
			}
			sort.Strings(common)
			union := len(vocabs[i]) + len(vocabs[j]) - len(common)
			out = append(out, domain.Similarity{
				Doc1:        docs[i].Filename,
				Doc2:        docs[j].Filename,
				Score:       round(float64(len(common))/float64(union), 3),
				CommonWords: nonNil(common[:min(len(common), maxCommonWords)]),
				TotalCommon: len(common),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Compare analyses every document and relates their topics. A topic is
// common when at least max(2, n/2) documents have it and unique when only
// one does. It fails with domain.ErrInvalidInput for fewer than two
// documents.
func (a *DocumentAnalyzer) Compare(docs []domain.Document) (*domain.CorpusComparison, error) {
	if len(docs) < 2 {
		return nil, fmt.Errorf("%w: at least 2 documents are needed for a comparison, got %d",
			domain.ErrInvalidInput, len(docs))
	}

	cmp := &domain.CorpusComparison{
		DocumentCount: len(docs),
		Documents:     make([]domain.DocumentAnalysis, 0, len(docs)),
		Similarities:  a.Similarities(docs),
		CommonThemes:  []string{},
		UniqueThemes:  map[string][]string{},
	}

	var topicOrder []string
	topicCount := make(map[string]int)
	readability := 0.0
	for i := range docs {
		analysis := a.Analyze(&docs[i])
		cmp.Documents = append(cmp.Documents, *analysis)
		cmp.Overall.TotalWords += analysis.Stats.Words
		cmp.Overall.TotalCharacters += analysis.Stats.Characters
		readability += analysis.Readability.FleschReadingEase

		for _, t := range docs[i].Topics {
			if topicCount[t] == 0 {
				topicOrder = append(topicOrder, t)
			}
			topicCount[t]++
		}
	}
	cmp.Overall.AvgReadability = round(readability/float64(len(docs)), 2)

	threshold := max(2, len(docs)/2)
	for _, t := range topicOrder {
		if topicCount[t] >= threshold {
			cmp.CommonThemes = append(cmp.CommonThemes, t)
		}
	}
	for i := range docs {
		var unique []string
		for _, t := range docs[i].Topics {
			if topicCount[t] == 1 {
				unique = append(unique, t)
			}
		}
		if len(unique) > 0 {
			cmp.UniqueThemes[docs[i].Filename] = unique[:min(len(unique), maxUniqueThemes)]
		}
	}
	return cmp, nil
}

// InsightGenerator turns corpus statistics into observations and
// suggestions for the user.
type InsightGenerator struct {
	analyzer *DocumentAnalyzer
}

// NewInsightGenerator creates a generator.
func NewInsightGenerator(analyzer *DocumentAnalyzer) *InsightGenerator {
	if analyzer == nil {
		analyzer = NewDocumentAnalyzer()
	}
	return &InsightGenerator{analyzer: analyzer}
}

// Generate derives insights from docs. It fails with domain.ErrInvalidInput
// when there are no documents.
func (g *InsightGenerator) Generate(docs []domain.Document) (*domain.Insights, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents loaded", domain.ErrInvalidInput)
	}

	var totalBytes int64
	var types []string
	for _, d := range docs {
		totalBytes += d.SizeBytes
		if t := string(d.ContentType); t != "" && !slices.Contains(types, t) {
			types = append(types, t)
		}
	}

	ins := &domain.Insights{
		Overview: domain.DocumentOverview{
			TotalDocuments: len(docs),
			TotalSizeMB:    round(float64(totalBytes)/bytesPerMegabyte, 3),
			FileTypes:      nonNil(types),
		},
		ContentInsights: []string{},
		Recommendations: []string{},
		ProcessingSuggestions: []string{
			"Ask for summaries of a specific topic",
			"Ask about specific facts such as dates, numbers and names",
			"Compare perspectives across documents",
			"Ask for trends or patterns",
		},
	}

	var overall domain.OverallStats
	commonThemes := 0
	if len(docs) >= 2 {
		cmp, err := g.analyzer.Compare(docs)
		if err != nil {
			return nil, err
		}
		ins.Comparison = cmp
		overall = cmp.Overall
		commonThemes = len(cmp.CommonThemes)
	} else {
		a := g.analyzer.Analyze(&docs[0])
		overall = domain.OverallStats{
			TotalWords:      a.Stats.Words,
			TotalCharacters: a.Stats.Characters,
			AvgReadability:  a.Readability.FleschReadingEase,
		}
	}

	if overall.TotalWords > largeCorpusWords {
		ins.ContentInsights = append(ins.ContentInsights, "Large corpus detected, suited to in-depth analysis")
	}
	if commonThemes > cohesiveThemes {
		ins.ContentInsights = append(ins.ContentInsights,
			fmt.Sprintf("High thematic cohesion: %d common themes identified", commonThemes))
	}

	switch {
	case overall.AvgReadability > easyReadability:
		ins.ReadabilityAssessment = "Easy to read"
	case overall.AvgReadability > mediumReadability:
		ins.ReadabilityAssessment = "Moderately difficult"
	default:
		ins.ReadabilityAssessment = "Difficult to read"
	}

	if len(docs) > 2 {
		ins.Recommendations = append(ins.Recommendations, "Try questions that compare documents")
	}
	if overall.TotalWords > specificQsWords {
		ins.Recommendations = append(ins.Recommendations, "Use specific questions for better results")
	}
	return ins, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
