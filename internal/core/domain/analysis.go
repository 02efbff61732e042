package domain

// BasicStats are size counts for a document's text.
type BasicStats struct {
	Characters int `json:"characters" yaml:"characters"`
	Words      int `json:"words" yaml:"words"`
	Sentences  int `json:"sentences" yaml:"sentences"`
	Paragraphs int `json:"paragraphs" yaml:"paragraphs"`
}

// Readability holds a simplified Flesch reading-ease score and the
// averages it was computed from.
type Readability struct {
	FleschReadingEase float64 `json:"flesch_reading_ease" yaml:"flesch_reading_ease"`
	AvgSentenceLength float64 `json:"avg_sentence_length" yaml:"avg_sentence_length"`
	AvgWordLength     float64 `json:"avg_word_length" yaml:"avg_word_length"`
	TotalSentences    int     `json:"total_sentences" yaml:"total_sentences"`
	TotalWords        int     `json:"total_words" yaml:"total_words"`
}

// Entities are pattern-matched mentions found in a document.
type Entities struct {
	Dates            []string `json:"dates" yaml:"dates"`
	Numbers          []string `json:"numbers" yaml:"numbers"`
	Emails           []string `json:"emails" yaml:"emails"`
	URLs             []string `json:"urls" yaml:"urls"`
	CapitalizedWords []string `json:"capitalized_words" yaml:"capitalized_words"`
}

// WordCount is a word and its frequency.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// DocumentAnalysis is the per-document statistical summary.
type DocumentAnalysis struct {
	DocumentID  string      `json:"document_id" yaml:"document_id"`
	Filename    string      `json:"filename" yaml:"filename"`
	Stats       BasicStats  `json:"basic_stats" yaml:"basic_stats"`
	Readability Readability `json:"readability" yaml:"readability"`
	Entities    Entities    `json:"entities" yaml:"entities"`
	TopWords    []WordCount `json:"top_words" yaml:"top_words"`
	Topics      []string    `json:"topics" yaml:"topics"`

	// ReadingMinutes is the estimated reading time at 200 words per minute.
	ReadingMinutes float64 `json:"estimated_reading_time" yaml:"estimated_reading_time"`
}

// Similarity is the vocabulary overlap between two documents.
type Similarity struct {
	Doc1        string   `json:"doc1" yaml:"doc1"`
	Doc2        string   `json:"doc2" yaml:"doc2"`
	Score       float64  `json:"similarity_score" yaml:"similarity_score"`
	CommonWords []string `json:"common_words" yaml:"common_words"`
	TotalCommon int      `json:"total_common" yaml:"total_common"`
}

// OverallStats aggregates counts across documents.
type OverallStats struct {
	TotalWords      int     `json:"total_words" yaml:"total_words"`
	TotalCharacters int     `json:"total_characters" yaml:"total_characters"`
	AvgReadability  float64 `json:"avg_readability" yaml:"avg_readability"`
}

// CorpusComparison is the statistical comparison of several documents.
type CorpusComparison struct {
	DocumentCount int                 `json:"document_count" yaml:"document_count"`
	Documents     []DocumentAnalysis  `json:"individual_summaries" yaml:"individual_summaries"`
	Similarities  []Similarity        `json:"similarities" yaml:"similarities"`
	Overall       OverallStats        `json:"overall_stats" yaml:"overall_stats"`
	CommonThemes  []string            `json:"common_themes" yaml:"common_themes"`
	UniqueThemes  map[string][]string `json:"unique_themes" yaml:"unique_themes"`
}

// DocumentOverview summarises the registered corpus.
type DocumentOverview struct {
	TotalDocuments int      `json:"total_documents" yaml:"total_documents"`
	TotalSizeMB    float64  `json:"total_size_mb" yaml:"total_size_mb"`
	FileTypes      []string `json:"file_types" yaml:"file_types"`
}

// Insights are observations and suggestions derived from the corpus.
type Insights struct {
	Overview              DocumentOverview  `json:"document_overview" yaml:"document_overview"`
	ContentInsights       []string          `json:"content_insights" yaml:"content_insights"`
	Recommendations       []string          `json:"recommendations" yaml:"recommendations"`
	ReadabilityAssessment string            `json:"readability_assessment" yaml:"readability_assessment"`
	ProcessingSuggestions []string          `json:"processing_suggestions" yaml:"processing_suggestions"`
	Comparison            *CorpusComparison `json:"comparison,omitempty" yaml:"comparison,omitempty"`
}

// ComparisonReport pairs the model-generated comparison with the
// statistical one.
type ComparisonReport struct {
	Answer     *Answer           `json:"answer" yaml:"answer"`
	Statistics *CorpusComparison `json:"statistics" yaml:"statistics"`
}
