package view

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"

	"github.com/itchan-dev/aurum/shared/logger"
)

// TextProcessor turns message text into safe HTML. Only a chat-sized subset
// of markdown is enabled: fenced code, code spans, emphasis and strikethrough.
type TextProcessor struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewTextProcessor() *TextProcessor {
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
	)

	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithExtensions(extension.Strikethrough),
	)
	return &TextProcessor{md: md, policy: bluemonday.UGCPolicy()}
}

func (tp *TextProcessor) Render(text string) template.HTML {
	if text == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := tp.md.Convert([]byte(text), &buf); err != nil {
		logger.Log.Warn("markdown render failed", "error", err)
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(strings.TrimSpace(tp.policy.Sanitize(buf.String())))
}
