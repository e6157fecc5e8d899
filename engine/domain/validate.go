package domain

import "strings"

// ValidateQAInput checks the three required fields of an incoming pair.
// It runs before any external call so malformed input never costs an
// embedding request.
func ValidateQAInput(keyword, question, answer string) error {
	if strings.TrimSpace(keyword) == "" {
		return NewValidationError("keyword", keyword, ErrEmptyKeyword)
	}
	if strings.TrimSpace(question) == "" {
		return NewValidationError("question", question, ErrEmptyQuestion)
	}
	if strings.TrimSpace(answer) == "" {
		return NewValidationError("answer", answer, ErrEmptyAnswer)
	}
	return nil
}

// ValidateQuery checks an incoming retrieval request.
func ValidateQuery(q QueryRequest) error {
	if strings.TrimSpace(q.Query) == "" {
		return NewValidationError("query", q.Query, ErrEmptyQuery)
	}
	return nil
}
