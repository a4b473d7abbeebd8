package models

type WorkerStatus string

const (
	WorkerAvailable WorkerStatus = "Available"
	WorkerReserved  WorkerStatus = "Reserved"
	WorkerHired     WorkerStatus = "Hired"
)

// Worker is a domestic worker the agency places with clients.
type Worker struct {
	ID          string       `json:"id"`
	FullName    string       `json:"full_name"`
	Nationality string       `json:"nationality"`
	Status      WorkerStatus `json:"status"`
}
