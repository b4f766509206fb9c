// Package schedule computes critical-path schedule metrics over an
// acyclic-validated dependency graph.
package schedule

import (
	"math"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/graph"
)

const unset = math.MinInt64

// Analyze performs forward and backward passes over the topological
// order to compute earliest/latest start-finish, total and free slack,
// and the critical path. The graph must have passed cycle validation;
// an unvalidated graph is refused with domain.ErrGraphNotValidated.
//
// All time arithmetic is int64 minutes. Negative lag is permitted and
// contributes negatively to start/finish times. A zero-duration task
// is a valid milestone. An empty population yields an empty result.
func Analyze(g *graph.DependencyGraph) (*domain.ScheduleResult, error) {
	if !g.Validated() {
		return nil, domain.ErrGraphNotValidated
	}

	result := &domain.ScheduleResult{
		Tasks:    make(map[string]*domain.TaskSchedule, g.Len()),
		Warnings: g.Warnings(),
	}
	if g.Len() == 0 {
		return result, nil
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	result.Order = order

	durations := make(map[string]int64, g.Len())
	for _, t := range g.Tasks() {
		durations[t.ID] = t.DurationMins
	}

	// Forward pass: earliest start is the max contribution over all
	// incoming edges; tasks with no predecessors start at time zero.
	// An explicit start constraint applies when it is later.
	for _, id := range order {
		ts := &domain.TaskSchedule{TaskID: id}
		result.Tasks[id] = ts

		es := int64(unset)
		for _, e := range g.InEdges(id) {
			pred := result.Tasks[e.From]
			c := forwardContribution(e, pred, durations[id])
			if c > es {
				es = c
			}
		}
		if es == unset {
			es = 0
		}
		if t := g.Task(id); t.StartMins != nil && *t.StartMins > es {
			es = *t.StartMins
		}
		ts.EarlyStartMins = es
		ts.EarlyFinishMins = es + durations[id]
	}

	// Project finish anchors the backward pass.
	var finish int64
	for _, ts := range result.Tasks {
		if ts.EarlyFinishMins > finish {
			finish = ts.EarlyFinishMins
		}
	}
	result.TotalDurationMins = finish

	// Backward pass: latest finish is the min constraint over all
	// outgoing edges; tasks with no successors anchor to the project
	// finish.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		ts := result.Tasks[id]

		lf := int64(math.MaxInt64)
		outs := g.OutEdges(id)
		if len(outs) == 0 {
			lf = finish
		}
		for _, e := range outs {
			succ := result.Tasks[e.To]
			c := backwardConstraint(e, succ, durations[id])
			if c < lf {
				lf = c
			}
		}
		ts.LateFinishMins = lf
		ts.LateStartMins = lf - durations[id]
		ts.TotalSlackMins = ts.LateStartMins - ts.EarlyStartMins
	}

	// Free slack: how far a task can slip without moving any successor's
	// earliest event.
	for _, id := range order {
		ts := result.Tasks[id]
		free := finish - ts.EarlyFinishMins
		for _, e := range g.OutEdges(id) {
			succ := result.Tasks[e.To]
			var room int64
			switch e.Type {
			case domain.EdgeStartToStart:
				room = succ.EarlyStartMins - e.LagMins - ts.EarlyStartMins
			case domain.EdgeFinishToFinish:
				room = succ.EarlyFinishMins - e.LagMins - ts.EarlyFinishMins
			case domain.EdgeStartToFinish:
				room = succ.EarlyFinishMins - e.LagMins - ts.EarlyStartMins
			default: // finish_to_start
				room = succ.EarlyStartMins - e.LagMins - ts.EarlyFinishMins
			}
			if room < free {
				free = room
			}
		}
		if free < 0 {
			free = 0
		}
		ts.FreeSlackMins = free
	}

	markCriticalPath(g, result, order)
	return result, nil
}

// forwardContribution computes the earliest-start constraint that edge
// e places on its successor, given the predecessor schedule and the
// successor duration.
func forwardContribution(e graph.Edge, pred *domain.TaskSchedule, succDuration int64) int64 {
	switch e.Type {
	case domain.EdgeStartToStart:
		return pred.EarlyStartMins + e.LagMins
	case domain.EdgeFinishToFinish:
		return pred.EarlyFinishMins + e.LagMins - succDuration
	case domain.EdgeStartToFinish:
		return pred.EarlyStartMins + e.LagMins - succDuration
	default: // finish_to_start
		return pred.EarlyFinishMins + e.LagMins
	}
}

// backwardConstraint computes the latest-finish bound that edge e
// places on its predecessor, given the successor schedule and the
// predecessor duration.
func backwardConstraint(e graph.Edge, succ *domain.TaskSchedule, predDuration int64) int64 {
	switch e.Type {
	case domain.EdgeStartToStart:
		return succ.LateStartMins - e.LagMins + predDuration
	case domain.EdgeFinishToFinish:
		return succ.LateFinishMins - e.LagMins
	case domain.EdgeStartToFinish:
		return succ.LateFinishMins - e.LagMins + predDuration
	default: // finish_to_start
		return succ.LateStartMins - e.LagMins
	}
}

// markCriticalPath flags every minimum-slack task and reconstructs one
// source-to-sink chain by following tight edges between them.
func markCriticalPath(g *graph.DependencyGraph, result *domain.ScheduleResult, order []string) {
	minSlack := int64(math.MaxInt64)
	for _, ts := range result.Tasks {
		if ts.TotalSlackMins < minSlack {
			minSlack = ts.TotalSlackMins
		}
	}
	for _, ts := range result.Tasks {
		ts.OnCriticalPath = ts.TotalSlackMins == minSlack
	}

	// Chain start: the first critical task in topological order with no
	// critical predecessor reaching it through a tight edge.
	start := ""
	for _, id := range order {
		if !result.Tasks[id].OnCriticalPath {
			continue
		}
		if criticalPredecessor(g, result, id) == "" {
			start = id
			break
		}
	}
	if start == "" {
		return
	}

	durations := make(map[string]int64, g.Len())
	for _, t := range g.Tasks() {
		durations[t.ID] = t.DurationMins
	}

	path := []string{start}
	seen := map[string]bool{start: true}
	for cur := start; ; {
		next := ""
		for _, e := range g.OutEdges(cur) {
			succ := result.Tasks[e.To]
			if !succ.OnCriticalPath || seen[e.To] {
				continue
			}
			// Tight edge: this edge is what drives the successor's
			// earliest start.
			if forwardContribution(e, result.Tasks[cur], durations[e.To]) != succ.EarlyStartMins {
				continue
			}
			if next == "" || e.To < next {
				next = e.To
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		seen[next] = true
		cur = next
	}
	result.CriticalPath = path
}

// criticalPredecessor returns the ID of a critical predecessor driving
// the given task through a tight edge, or "" if none exists.
func criticalPredecessor(g *graph.DependencyGraph, result *domain.ScheduleResult, id string) string {
	ts := result.Tasks[id]
	var duration int64
	if t := g.Task(id); t != nil {
		duration = t.DurationMins
	}
	for _, e := range g.InEdges(id) {
		pred := result.Tasks[e.From]
		if pred.OnCriticalPath && forwardContribution(e, pred, duration) == ts.EarlyStartMins {
			return e.From
		}
	}
	return ""
}
