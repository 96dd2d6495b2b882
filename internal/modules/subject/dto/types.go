package dto

type SubjectOutput struct {
	ID          int64
	Name        string
	Description string
	Priority    string
	Color       string
}
