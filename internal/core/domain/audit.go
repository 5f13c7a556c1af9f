package domain

import "time"

type AuditKind string

const (
	AuditKindDocument AuditKind = "document"
	AuditKindQuestion AuditKind = "question"
)

type DocumentAudit struct {
	Text string `json:"text"`
}

type QuestionAudit struct {
	Question string `json:"question"`
	Emotion  string `json:"emotion"`
	Answer   string `json:"answer"`
}

// AuditRecord is one write-only audit entry. Exactly one of Document and Question is set.
type AuditRecord struct {
	Kind       AuditKind      `json:"kind"`
	Document   *DocumentAudit `json:"document,omitempty"`
	Question   *QuestionAudit `json:"question,omitempty"`
	RecordedAt time.Time      `json:"recorded_at"`
}

func NewDocumentAudit(text string) AuditRecord {
	return AuditRecord{
		Kind:       AuditKindDocument,
		Document:   &DocumentAudit{Text: text},
		RecordedAt: time.Now().UTC(),
	}
}

func NewQuestionAudit(question, emotion, answer string) AuditRecord {
	return AuditRecord{
		Kind:       AuditKindQuestion,
		Question:   &QuestionAudit{Question: question, Emotion: emotion, Answer: answer},
		RecordedAt: time.Now().UTC(),
	}
}
