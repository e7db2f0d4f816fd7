package usecase

import (
	"fmt"

	"github.com/millianlmx/rag/internal/domain"
	"github.com/millianlmx/rag/internal/port"
)

// AskUseCase runs the full query pipeline: embed the question, retrieve
// evidence, generate a grounded answer. Each call walks the states
// received -> embedding -> retrieving -> generating -> completed, landing
// in failed on the first unrecoverable error. The whole path is read-only
// with respect to the store.
type AskUseCase struct {
	store     port.VectorStore
	retriever *RetrieveUseCase
	answerer  *AnswerUseCase
	topK      int
}

// NewAskUseCase creates the query pipeline.
func NewAskUseCase(store port.VectorStore, retriever *RetrieveUseCase, answerer *AnswerUseCase, topK int) *AskUseCase {
	return &AskUseCase{
		store:     store,
		retriever: retriever,
		answerer:  answerer,
		topK:      topK,
	}
}

// Ask answers a question against the knowledge base. docID optionally
// scopes retrieval to one document. provided is extra document text
// attached to this question only; it is appended to the generation prompt
// but not embedded or stored. The returned QueryContext always carries
// whatever results were retrieved, even when generation fails.
func (u *AskUseCase) Ask(question, docID, provided string) *domain.QueryContext {
	qc := &domain.QueryContext{
		Question: question,
		State:    domain.StateReceived,
	}

	count, err := u.store.Count()
	if err != nil {
		return fail(qc, err)
	}

	if count > 0 {
		qc.State = domain.StateEmbedding
		vector, err := u.retriever.EmbedQuery(question)
		if err != nil {
			return fail(qc, err)
		}

		qc.State = domain.StateRetrieving
		qc.Results, err = u.retriever.Search(vector, u.topK, docID)
		if err != nil {
			return fail(qc, err)
		}
	}

	prompt := question
	if provided != "" {
		prompt = fmt.Sprintf("%s\n\nProvided document:\n%s", question, provided)
	}

	qc.State = domain.StateGenerating
	answer, citations, err := u.answerer.Answer(prompt, qc.Results)
	if err != nil {
		return fail(qc, err)
	}

	qc.Answer = answer
	qc.Citations = citations
	qc.State = domain.StateCompleted
	return qc
}

func fail(qc *domain.QueryContext, err error) *domain.QueryContext {
	qc.Err = err
	qc.State = domain.StateFailed
	return qc
}
