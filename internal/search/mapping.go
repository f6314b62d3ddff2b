package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for catalog documents.
//
// Titles and summaries get the English analyzer for stemmed full-text search;
// type, slug, difficulty, and the tag sets are exact keyword fields used for
// filtering; rating and time_minutes are numeric for range queries.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = en.AnalyzerName
	titleField.Store = true
	titleField.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleField)

	summaryField := bleve.NewTextFieldMapping()
	summaryField.Analyzer = en.AnalyzerName
	summaryField.Store = false
	summaryField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("summary", summaryField)

	for _, name := range []string{"type", "slug", "difficulty", "url"} {
		kw := bleve.NewTextFieldMapping()
		kw.Analyzer = keyword.Name
		kw.Store = true
		docMapping.AddFieldMappingsAt(name, kw)
	}

	for _, name := range []string{"mechanisms", "categories", "languages"} {
		kw := bleve.NewTextFieldMapping()
		kw.Analyzer = keyword.Name
		kw.Store = true
		docMapping.AddFieldMappingsAt(name, kw)
	}

	ratingField := bleve.NewNumericFieldMapping()
	ratingField.Store = true
	docMapping.AddFieldMappingsAt("rating", ratingField)

	timeField := bleve.NewNumericFieldMapping()
	timeField.Store = true
	docMapping.AddFieldMappingsAt("time_minutes", timeField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}
