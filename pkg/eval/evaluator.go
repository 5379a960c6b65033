package eval

import (
	"math"
	"strings"
	"unicode"

	"github.com/wfiftyfour/graphrag/pkg/search"
)

// Sampling caps that bound evaluation cost. They also define the metric
// values, so changing them breaks score comparability across runs.
const (
	answerSampleChars   = 2000
	contentSampleChars  = 500
	contextSampleChars  = 1000
	maxSampledResults   = 5
	maxSampledSentences = 10
)

// Metrics holds the four retrieval/answer quality scores, each in [0,1].
// The metrics are cheap lexical approximations, not model judgments.
type Metrics struct {
	RelevanceScore float64 `json:"relevance_score"`
	CoverageScore  float64 `json:"coverage_score"`
	AnswerQuality  float64 `json:"answer_quality"`
	Faithfulness   float64 `json:"faithfulness"`
}

// Overall returns the unweighted mean of the four metrics.
func (m Metrics) Overall() float64 {
	return (m.RelevanceScore + m.CoverageScore + m.AnswerQuality + m.Faithfulness) / 4
}

// Evaluate scores a query/answer pair against its search results.
// groundTruth is optional; when empty the answer-quality metric skips its
// ground-truth component.
func Evaluate(query, answer string, results []search.SearchResult, groundTruth string) Metrics {
	return Metrics{
		RelevanceScore: clamp01(relevance(query, results)),
		CoverageScore:  clamp01(coverage(results)),
		AnswerQuality:  clamp01(answerQuality(answer, query, groundTruth)),
		Faithfulness:   clamp01(faithfulness(answer, results)),
	}
}

// resultContent is the scored text of a result: chunk/entity content, or
// the report summary for community results.
func resultContent(r search.SearchResult) string {
	if r.Content != "" {
		return r.Content
	}
	return r.Summary
}

// relevance combines each result's similarity score with its query token
// overlap (0.7/0.3), then applies DCG-style rank discounting normalized
// by the ideal all-ones sum. Higher-ranked results contribute more.
func relevance(query string, results []search.SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}

	queryTokens := tokenSet(query)

	var weightedSum, idealSum float64
	for i, r := range results {
		overlap := 0.0
		if len(queryTokens) > 0 {
			resultTokens := tokenSet(resultContent(r))
			overlap = float64(intersectionSize(queryTokens, resultTokens)) / float64(len(queryTokens))
		}
		score := 0.7*r.Score + 0.3*overlap

		discount := math.Log2(float64(i) + 2)
		weightedSum += score / discount
		idealSum += 1.0 / discount
	}

	if idealSum == 0 {
		return 0
	}
	return weightedSum / idealSum
}

// coverage measures breadth: 0.4 entity diversity + 0.3 content diversity
// + 0.3 result-type diversity. Content diversity compares only the first
// five results and the first 500 characters of each.
func coverage(results []search.SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}

	var contents []string
	entities := make(map[string]bool)
	types := make(map[string]bool)

	for _, r := range results {
		contents = append(contents, resultContent(r))

		if r.Type != "" {
			types[string(r.Type)] = true
		} else {
			types["unknown"] = true
		}

		if name, ok := r.Metadata["name"].(string); ok && name != "" {
			entities[name] = true
		}
		if r.GraphContext != nil {
			for _, n := range r.GraphContext.Neighbors {
				entities[n] = true
			}
		}
	}

	entityDiversity := math.Min(float64(len(entities))/float64(len(results)*2), 1.0)
	typeDiversity := math.Min(float64(len(types))/3, 1.0)

	contentDiversity := 0.0
	if len(contents) > 1 {
		sample := len(contents)
		if sample > maxSampledResults {
			sample = maxSampledResults
		}
		var overlaps []float64
		for i := 0; i < sample; i++ {
			for j := i + 1; j < sample; j++ {
				tokensI := tokenSet(truncateChars(contents[i], contentSampleChars))
				tokensJ := tokenSet(truncateChars(contents[j], contentSampleChars))
				if len(tokensI) == 0 || len(tokensJ) == 0 {
					continue
				}
				larger := len(tokensI)
				if len(tokensJ) > larger {
					larger = len(tokensJ)
				}
				overlaps = append(overlaps, float64(intersectionSize(tokensI, tokensJ))/float64(larger))
			}
		}
		if len(overlaps) > 0 {
			contentDiversity = 1.0 - mean(overlaps)
		} else {
			contentDiversity = 0.5
		}
	}

	return 0.4*entityDiversity + 0.3*contentDiversity + 0.3*typeDiversity
}

// answerQuality averages up to four sub-scores: query-token coverage, a
// piecewise word-count score, a sentence-statistics coherence score, and,
// when ground truth is supplied, token-level F1 against it. Only the
// first 2000 characters of answer and ground truth are considered.
func answerQuality(answer, query, groundTruth string) float64 {
	if answer == "" {
		return 0
	}

	var scores []float64

	answerSample := truncateChars(answer, answerSampleChars)
	queryTokens := tokenSet(query)
	answerTokens := tokenSet(answerSample)

	if len(queryTokens) > 0 {
		scores = append(scores, float64(intersectionSize(queryTokens, answerTokens))/float64(len(queryTokens)))
	}

	wordCount := len(strings.Fields(answerSample))
	var lengthScore float64
	switch {
	case wordCount < 50:
		lengthScore = float64(wordCount) / 50
	case wordCount > 500:
		lengthScore = 1.0 - math.Min(float64(wordCount-500)/500, 0.5)
	default:
		lengthScore = 1.0
	}
	scores = append(scores, lengthScore)

	sentences := splitSentences(answerSample)
	if len(sentences) > 0 {
		if len(sentences) > maxSampledSentences {
			sentences = sentences[:maxSampledSentences]
		}
		lengths := make([]float64, len(sentences))
		for i, s := range sentences {
			lengths[i] = float64(len(strings.Fields(s)))
		}
		avg := mean(lengths)
		std := 5.0
		if len(lengths) > 1 {
			std = stddev(lengths, avg)
		}

		lengthQuality := 1.0 - math.Min(math.Abs(avg-15)/15, 1.0)
		varianceQuality := math.Min(std/5, 1.0)
		scores = append(scores, 0.6*lengthQuality+0.4*varianceQuality)
	}

	if groundTruth != "" {
		gtTokens := tokenSet(truncateChars(groundTruth, answerSampleChars))
		if len(gtTokens) > 0 && len(answerTokens) > 0 {
			overlap := float64(intersectionSize(gtTokens, answerTokens))
			precision := overlap / float64(len(answerTokens))
			recall := overlap / float64(len(gtTokens))
			f1 := 0.0
			if precision+recall > 0 {
				f1 = 2 * precision * recall / (precision + recall)
			}
			scores = append(scores, f1)
		}
	}

	if len(scores) == 0 {
		return 0
	}
	return mean(scores)
}

// faithfulness measures how much of the answer's vocabulary comes from
// the first five results (1000 characters each). When the answer names
// capitalized entities, the score blends in how many of them literally
// appear in the context (0.7 token grounding, 0.3 entity grounding).
func faithfulness(answer string, results []search.SearchResult) float64 {
	if answer == "" || len(results) == 0 {
		return 0
	}

	answerSample := truncateChars(answer, answerSampleChars)
	answerTokens := tokenSet(answerSample)
	if len(answerTokens) == 0 {
		return 0
	}

	sampled := results
	if len(sampled) > maxSampledResults {
		sampled = sampled[:maxSampledResults]
	}

	contextTokens := make(map[string]bool)
	var contextParts []string
	for _, r := range sampled {
		sample := truncateChars(resultContent(r), contextSampleChars)
		for _, t := range tokenize(sample) {
			contextTokens[t] = true
		}
		contextParts = append(contextParts, sample)
	}

	score := float64(intersectionSize(answerTokens, contextTokens)) / float64(len(answerTokens))

	// capitalized words are a cheap stand-in for named entities
	sentences := splitSentences(answerSample)
	if len(sentences) > maxSampledSentences {
		sentences = sentences[:maxSampledSentences]
	}
	answerEntities := make(map[string]bool)
	for _, sentence := range sentences {
		for _, word := range strings.Fields(sentence) {
			runes := []rune(word)
			if len(runes) > 1 && unicode.IsUpper(runes[0]) {
				answerEntities[strings.ToLower(word)] = true
			}
		}
	}

	if len(answerEntities) > 0 {
		contextText := strings.ToLower(strings.Join(contextParts, " "))
		grounded := 0
		for entity := range answerEntities {
			if strings.Contains(contextText, entity) {
				grounded++
			}
		}
		entityGrounding := float64(grounded) / float64(len(answerEntities))
		score = 0.7*score + 0.3*entityGrounding
	}

	return score
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the population standard deviation.
func stddev(values []float64, avg float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - avg
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
