package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rag-chat-be/pkg/index/schema"
	"rag-chat-be/pkg/retrieval"
)

func TestRenderSourcesEmpty(t *testing.T) {
	assert.Equal(t, "", RenderSources(nil))
}

func TestRenderSourcesTitleAndDate(t *testing.T) {
	out := RenderSources([]retrieval.DedupedResult{
		{
			Location: "/data/uploads/handbook.pdf",
			Metadata: schema.Metadata{
				"title":        schema.StringValue("Employee Handbook"),
				"author":       schema.StringValue("HR Dept"),
				"creationDate": schema.StringValue("D:20240115093000Z"),
			},
			HitCount: 3,
		},
		{
			Location: "/data/uploads/faq.pdf",
			Metadata: schema.Metadata{},
			HitCount: 1,
		},
	})

	assert.Contains(t, out, "**Sources**:")
	assert.Contains(t, out, "1. Employee Handbook — HR Dept — 2024-01-15 — `handbook.pdf`")
	assert.Contains(t, out, "2. faq — `faq.pdf`")
}

func TestRenderSourcesSubjectFallback(t *testing.T) {
	out := RenderSources([]retrieval.DedupedResult{
		{
			Location: "notes.pdf",
			Metadata: schema.Metadata{
				"subject": schema.StringValue("Quarterly Review"),
			},
			HitCount: 2,
		},
	})

	assert.Contains(t, out, "1. Quarterly Review — `notes.pdf`")
}

func TestParsePDFDate(t *testing.T) {
	assert.Equal(t, "2024-01-15", parsePDFDate("D:20240115093000Z"))
	assert.Equal(t, "2023-12-31", parsePDFDate("20231231"))
	assert.Equal(t, "", parsePDFDate("D:2024"))
	assert.Equal(t, "", parsePDFDate("not a date"))
	assert.Equal(t, "", parsePDFDate(""))
}
