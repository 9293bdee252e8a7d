package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/samber/lo"
)

// Схема ответа для генерации меток
var LabelsSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"labels": {
			Type:  TypeArray,
			Items: &Schema{Type: TypeString},
		},
	},
	Required: []string{"labels"},
}

// Схема ответа для генерации черновика
var DraftSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"title":       {Type: TypeString, Description: "SEO-friendly blog post title"},
		"summary":     {Type: TypeString, Description: "one paragraph, 2-4 sentences"},
		"body":        {Type: TypeString, Description: "full article, 300-500 words"},
		"imagePrompt": {Type: TypeString, Description: "2-4 concrete visual keywords for a stock photo search"},
	},
	Required: []string{"title", "summary", "body", "imagePrompt"},
}

// LabelsPrompt - промпт для выделения тем из заголовков
func LabelsPrompt(titles []string) string {
	return "Based on the following list of article titles, generate 3-5 concise and distinct topic labels " +
		"that summarize the key themes. Each label should be 3-5 words long.\n\n" +
		"Titles:\n" + strings.Join(titles, "\n")
}

// DraftPrompt - промпт для черновика статьи по метке и свежим заголовкам.
// excerpt опционален, это кусок текста первой темы.
func DraftPrompt(label string, topics []model.Topic, excerpt string) string {
	headlines := lo.Map(topics, func(t model.Topic, _ int) string {
		return "- " + t.Title
	})

	var b strings.Builder
	b.WriteString("You are an expert content creator and tech journalist. Your task is to generate a draft for a blog post ")
	b.WriteString("based on a main topic and a list of related, recent headlines. The tone should be informative, engaging, and neutral.\n\n")
	fmt.Fprintf(&b, "Main Topic: %q\n\n", label)
	b.WriteString("Sample Headlines for Context:\n")
	b.WriteString(strings.Join(headlines, "\n"))
	b.WriteString("\n\n")

	if excerpt != "" {
		b.WriteString("Excerpt from the top headline's page:\n")
		b.WriteString(excerpt)
		b.WriteString("\n\n")
	}

	b.WriteString("Generate the content for the following fields:\n")
	b.WriteString("- title: A compelling, SEO-friendly blog post title.\n")
	b.WriteString("- summary: A concise, one-paragraph summary of the article (2-4 sentences).\n")
	b.WriteString("- body: The full article content, written in clear paragraphs. It should be around 300-500 words.\n")
	b.WriteString("- imagePrompt: A short, simple list of 2-4 keywords for searching a stock photo library like Unsplash. ")
	b.WriteString("The keywords should be concrete and visually descriptive. For example: \"data technology global network\", ")
	b.WriteString("\"abstract blue gold\", or \"futuristic circuit board\".\n")

	return b.String()
}

// DecodeLabels проверяет ответ модели и достает из него метки.
// Пустые строки и пробелы по краям выкидываются.
func DecodeLabels(text string) ([]string, error) {
	raw := []byte(cleanJSON(text))
	if err := LabelsSchema.Validate(raw); err != nil {
		return nil, err
	}

	var out struct {
		Labels []string `json:"labels"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, schemaErrorf("decode labels: %v", err)
	}

	labels := lo.Map(out.Labels, func(l string, _ int) string {
		return strings.TrimSpace(l)
	})

	return lo.Compact(labels), nil
}

// DecodeDraft проверяет ответ модели и достает поля черновика
func DecodeDraft(text string) (model.DraftContent, error) {
	raw := []byte(cleanJSON(text))
	if err := DraftSchema.Validate(raw); err != nil {
		return model.DraftContent{}, err
	}

	var content model.DraftContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return model.DraftContent{}, schemaErrorf("decode draft: %v", err)
	}

	content.Title = strings.TrimSpace(content.Title)
	content.Summary = strings.TrimSpace(content.Summary)
	content.Body = strings.TrimSpace(content.Body)
	content.ImagePrompt = strings.TrimSpace(content.ImagePrompt)

	switch {
	case content.Title == "":
		return model.DraftContent{}, schemaErrorf("$.title: empty")
	case content.Summary == "":
		return model.DraftContent{}, schemaErrorf("$.summary: empty")
	case content.Body == "":
		return model.DraftContent{}, schemaErrorf("$.body: empty")
	case content.ImagePrompt == "":
		return model.DraftContent{}, schemaErrorf("$.imagePrompt: empty")
	}

	return content, nil
}
