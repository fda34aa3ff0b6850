package service

import (
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strings"

	"ajil.mn/jobmarket/internal/model"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const jobsIndex = "jobs"

type SearchService interface {
	IndexJob(job *model.Job) error
	DeleteJob(id string) error
	// SearchJobs returns matching job ids in relevance order; the caller
	// loads the rows from Postgres.
	SearchJobs(query, location, employmentType string, limit int) ([]string, error)
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	filterableAttrs := []string{"location", "employment_type", "company_id", "status"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(jobsIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		log.Printf("Failed to update jobs filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at", "salary_max"}
	if _, err := s.client.Index(jobsIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		log.Printf("Failed to update jobs sortable attributes: %v", err)
	}
}

type meiliJobDoc struct {
	ID             string   `json:"id"`
	CompanyID      string   `json:"company_id"`
	CompanyName    string   `json:"company_name"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Requirements   string   `json:"requirements"`
	Location       string   `json:"location"`
	EmploymentType string   `json:"employment_type"`
	Status         string   `json:"status"`
	Skills         []string `json:"skills"`
	SalaryMax      int      `json:"salary_max"`
	CreatedAt      int64    `json:"created_at"`
}

func (s *searchService) cleanContentForIndex(content string) string {
	// Replace block tags with spaces to prevent text merging
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)

	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *searchService) IndexJob(job *model.Job) error {
	doc := meiliJobDoc{
		ID:             job.ID.String(),
		CompanyID:      job.CompanyID.String(),
		Title:          job.Title,
		Description:    s.cleanContentForIndex(job.Description),
		Requirements:   s.cleanContentForIndex(job.Requirements),
		Location:       job.Location,
		EmploymentType: job.EmploymentType,
		Status:         job.Status,
		Skills:         []string(job.Skills),
		CreatedAt:      job.CreatedAt.Unix(),
	}

	if job.Company != nil {
		doc.CompanyName = job.Company.Name
	}
	if job.SalaryMax != nil {
		doc.SalaryMax = *job.SalaryMax
	}

	_, err := s.client.Index(jobsIndex).AddDocuments([]meiliJobDoc{doc}, strPtr("id"))
	return err
}

func (s *searchService) DeleteJob(id string) error {
	_, err := s.client.Index(jobsIndex).DeleteDocument(id)
	return err
}

func (s *searchService) SearchJobs(query, location, employmentType string, limit int) ([]string, error) {
	filters := []string{fmt.Sprintf("status = %q", model.JobStatusOpen)}
	if location != "" {
		filters = append(filters, fmt.Sprintf("location = %q", location))
	}
	if employmentType != "" {
		filters = append(filters, fmt.Sprintf("employment_type = %q", employmentType))
	}

	res, err := s.client.Index(jobsIndex).Search(query, &meilisearch.SearchRequest{
		Limit:  int64(limit),
		Filter: strings.Join(filters, " AND "),
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if id := hitID(hit); id != "" {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

// hitID pulls the document id out of a raw search hit.
func hitID(hit meilisearch.Hit) string {
	raw, ok := hit["id"]
	if !ok {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return id
}

func strPtr(s string) *string {
	return &s
}
