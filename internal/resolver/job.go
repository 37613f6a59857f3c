package resolver

import "github.com/riverqueue/river"

// JobArgs is the payload of a background resolution job. Jobs are unique by
// args, so concurrent requests for the same canonical query share one job.
type JobArgs struct {
	// CompanyName is the raw requested company name.
	CompanyName string `json:"companyName"`
	// RegistrationNumber is the raw requested registration number, if any.
	RegistrationNumber string `json:"registrationNumber,omitempty"`
	// QueryKey is the canonical query key shared by all resolutions this job
	// serves.
	QueryKey string `json:"queryKey"`
}

// Kind implements river.JobArgs.
func (JobArgs) Kind() string { return "resolution" }

// InsertOpts deduplicates jobs by their args while one is still queued or
// running.
func (JobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
}
