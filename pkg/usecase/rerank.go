package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/domain/model"
)

//go:embed prompts/rerank_system.md
var rerankSystemPrompt string

//go:embed prompts/rerank_user.md
var rerankUserTemplate string

const (
	// contextRadius is how many bytes around a word are sent as context
	contextRadius = 80
	// maxRerankItems bounds one LLM request
	maxRerankItems = 50
)

type reranker struct {
	llmClient    gollem.LLMClient
	userTemplate *template.Template
}

// NewReranker creates a RerankUseCase backed by an LLM
func NewReranker(llmClient gollem.LLMClient) (interfaces.RerankUseCase, error) {
	tmpl, err := template.New("user").Parse(rerankUserTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse user prompt template")
	}

	return &reranker{
		llmClient:    llmClient,
		userTemplate: tmpl,
	}, nil
}

// Rerank asks the LLM to order each misspelling's suggestions by fit in
// text. The result only ever contains the engine's own suggestions.
func (uc *reranker) Rerank(ctx context.Context, text string, misspellings []model.Misspelling) ([]model.Misspelling, error) {
	logger := ctxlog.From(ctx)

	var items []model.RerankItem
	var index []int
	for i, m := range misspellings {
		if len(m.Suggestions) < 2 {
			continue
		}
		if len(items) == maxRerankItems {
			break
		}
		items = append(items, model.RerankItem{
			Word:        m.Word,
			Context:     surrounding(text, m.Offset, len(m.Word)),
			Suggestions: m.Suggestions,
		})
		index = append(index, i)
	}
	if len(items) == 0 {
		return misspellings, nil
	}

	itemsJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode rerank items")
	}

	var buf bytes.Buffer
	if err := uc.userTemplate.Execute(&buf, map[string]string{
		"Items": string(itemsJSON),
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to execute user prompt template")
	}

	logger.Debug("Calling LLM for rerank", "items", len(items), "prompt_length", buf.Len())

	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionSystemPrompt(rerankSystemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buf.String()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate LLM content")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("no response from LLM")
	}

	var answer model.RerankResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &answer); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}
	if len(answer.Items) != len(items) {
		return nil, goerr.New("LLM returned a different number of items",
			goerr.V("want", len(items)), goerr.V("got", len(answer.Items)))
	}

	out := make([]model.Misspelling, len(misspellings))
	copy(out, misspellings)
	for i, item := range answer.Items {
		target := &out[index[i]]
		if item.Word != target.Word {
			return nil, goerr.New("LLM returned items out of order",
				goerr.V("want", target.Word), goerr.V("got", item.Word))
		}
		target.Suggestions = reorder(target.Suggestions, item.Suggestions)
	}
	return out, nil
}

// reorder puts the words of preferred that exist in original first, then the
// rest of original in its own order
func reorder(original, preferred []string) []string {
	known := make(map[string]bool, len(original))
	for _, s := range original {
		known[s] = true
	}

	out := make([]string, 0, len(original))
	used := make(map[string]bool, len(original))
	for _, s := range preferred {
		if known[s] && !used[s] {
			out = append(out, s)
			used[s] = true
		}
	}
	for _, s := range original {
		if !used[s] {
			out = append(out, s)
		}
	}
	return out
}

// surrounding returns the line around the byte range [offset, offset+n),
// trimmed to contextRadius bytes on each side at rune boundaries
func surrounding(text string, offset, n int) string {
	if offset < 0 || offset+n > len(text) {
		return ""
	}
	start := max(0, offset-contextRadius)
	end := min(len(text), offset+n+contextRadius)
	for start > 0 && !utf8.RuneStart(text[start]) {
		start++
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end--
	}

	s := text[start:end]
	rel := offset - start
	if i := strings.LastIndexByte(s[:rel], '\n'); i >= 0 {
		s, rel = s[i+1:], rel-i-1
	}
	if i := strings.IndexByte(s[rel:], '\n'); i >= 0 {
		s = s[:rel+i]
	}
	return strings.TrimSpace(s)
}
