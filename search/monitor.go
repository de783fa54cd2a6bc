package search

import "github.com/engramdb/engram/core"

// Monitor provides hooks to observe the search pipeline.
// Implement this interface to track intermediate steps and results during search.
type Monitor interface {
	Start(query *Query)
	AfterEmbedding(dimensions int)
	AfterVectorSearch(matches []core.VectorMatch)
	AfterCandidateMerge(thoughtIds []core.ID)
	AfterRelationalFetch(thoughts []*core.Thought)
	Scored(result *Result)
	Finish(response *Response)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *Query)                        {}
func (n *noopMonitor) AfterEmbedding(_ int)                  {}
func (n *noopMonitor) AfterVectorSearch(_ []core.VectorMatch) {}
func (n *noopMonitor) AfterCandidateMerge(_ []core.ID)       {}
func (n *noopMonitor) AfterRelationalFetch(_ []*core.Thought) {}
func (n *noopMonitor) Scored(_ *Result)                      {}
func (n *noopMonitor) Finish(_ *Response)                    {}
