package similarity

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"

	"mindmap-backend/application/ports"
)

// Defaults of the local scorer
const (
	DefaultThreshold  = 0.35
	DefaultMaxResults = 5
)

// placeholderTexts are never worth suggesting
var placeholderTexts = map[string]bool{
	"":           true,
	"empty node": true,
	"new node":   true,
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
}

// LocalService scores candidates by the cosine similarity of their term
// frequency vectors. It needs no network and backs cmd/similarity as well
// as development setups without a similarity service.
type LocalService struct {
	threshold  float64
	maxResults int
}

// NewLocalService creates a scorer. Zero values take the defaults.
func NewLocalService(threshold float64, maxResults int) *LocalService {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &LocalService{threshold: threshold, maxResults: maxResults}
}

// Suggest returns the candidates scoring above the threshold, strongest
// first
func (s *LocalService) Suggest(ctx context.Context, req ports.SuggestionRequest) ([]ports.SuggestionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	others := make([]ports.SuggestionCandidate, 0, len(req.OtherNodes))
	for _, node := range req.OtherNodes {
		if !placeholderTexts[strings.ToLower(strings.TrimSpace(node.Text))] {
			others = append(others, node)
		}
	}
	results := []ports.SuggestionResult{}
	if len(others) == 0 {
		return results, nil
	}

	activeTerms := extractTerms(req.ActiveNode.Text)
	vocabulary := make(map[string]int)
	addTerms(vocabulary, activeTerms)
	otherTerms := make([][]string, len(others))
	for i, node := range others {
		otherTerms[i] = extractTerms(node.Text)
		addTerms(vocabulary, otherTerms[i])
	}

	activeVec := vectorize(activeTerms, vocabulary)
	for i, node := range others {
		score := cosine(activeVec, vectorize(otherTerms[i], vocabulary))
		if score <= s.threshold {
			continue
		}
		results = append(results, ports.SuggestionResult{
			TargetNodeID: node.ID,
			Score:        score,
			Explanation:  explain(activeTerms, otherTerms[i]),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}
	return results, nil
}

// extractTerms lowercases text and drops punctuation, stop words and
// words shorter than three letters. Repeats are kept; they weigh the
// vector.
func extractTerms(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(fields))
	for _, word := range fields {
		if len([]rune(word)) < 3 || stopWords[word] {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

func addTerms(vocabulary map[string]int, terms []string) {
	for _, term := range terms {
		if _, ok := vocabulary[term]; !ok {
			vocabulary[term] = len(vocabulary)
		}
	}
}

func vectorize(terms []string, vocabulary map[string]int) []float64 {
	vec := make([]float64, len(vocabulary))
	for _, term := range terms {
		vec[vocabulary[term]]++
	}
	return vec
}

// cosine is 0 when either vector is empty
func cosine(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

func explain(active, other []string) string {
	inOther := make(map[string]bool, len(other))
	for _, term := range other {
		inOther[term] = true
	}
	var shared []string
	seen := make(map[string]bool)
	for _, term := range active {
		if inOther[term] && !seen[term] {
			shared = append(shared, term)
			seen[term] = true
		}
	}
	if len(shared) == 0 {
		return "These concepts appear to be semantically related."
	}
	if len(shared) > 3 {
		shared = shared[:3]
	}
	return fmt.Sprintf("Both mention %s.", strings.Join(shared, ", "))
}
