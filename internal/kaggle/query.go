package kaggle

import (
	"net/url"
	"strconv"
)

// Listing resources
const (
	ResourceKernels      = "kernels"
	ResourceDatasets     = "datasets"
	ResourceCompetitions = "competitions"
)

// ListQuery describes one listing request. The same query renders to CLI
// arguments and to API parameters so both transports see identical filters.
type ListQuery struct {
	resource string
	mine     bool
	search   string
	page     int
	pageSize int
}

// NewListQuery creates a query for resource starting at page 1
func NewListQuery(resource string) *ListQuery {
	return &ListQuery{resource: resource, page: 1}
}

// Mine restricts a kernel listing to the caller's kernels
func (q *ListQuery) Mine() *ListQuery {
	q.mine = true
	return q
}

// Search adds a free-text filter
func (q *ListQuery) Search(term string) *ListQuery {
	q.search = term
	return q
}

// Page selects a 1-based page
func (q *ListQuery) Page(page int) *ListQuery {
	if page > 0 {
		q.page = page
	}
	return q
}

// PageSize sets the page size where the resource supports it
func (q *ListQuery) PageSize(size int) *ListQuery {
	if size > 0 {
		q.pageSize = size
	}
	return q
}

// Resource returns the listed resource name
func (q *ListQuery) Resource() string {
	return q.resource
}

// Operation names the query for logs and errors
func (q *ListQuery) Operation() string {
	if q.mine {
		return "list my " + q.resource
	}
	return "list " + q.resource
}

// CLIArgs renders the query as CLI arguments requesting CSV output
func (q *ListQuery) CLIArgs() []string {
	args := []string{q.resource, "list"}
	if q.mine {
		args = append(args, "--mine")
	}
	args = append(args, "--csv")
	if q.pageSize > 0 && q.resource == ResourceKernels {
		args = append(args, "--page-size", strconv.Itoa(q.pageSize))
	}
	if q.page > 1 {
		args = append(args, "--page", strconv.Itoa(q.page))
	}
	if q.search != "" {
		args = append(args, "--search", q.search)
	}
	return args
}

// APIPath returns the list endpoint for the resource
func (q *ListQuery) APIPath() string {
	return q.resource + "/list"
}

// APIValues renders the query as API parameters
func (q *ListQuery) APIValues() url.Values {
	v := url.Values{}
	if q.mine {
		v.Set("mine", "true")
	}
	v.Set("page", strconv.Itoa(q.page))
	if q.pageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.pageSize))
	}
	if q.search != "" {
		v.Set("search", q.search)
	}
	return v
}
