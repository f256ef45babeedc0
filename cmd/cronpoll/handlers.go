package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Tsukikage7/cronpoll/scheduler"
)

// jobView /jobs 返回的单个任务.
type jobView struct {
	Name     string     `json:"name"`
	Schedule string     `json:"schedule"`
	Status   string     `json:"status"`
	Running  bool       `json:"running"`
	Next     *time.Time `json:"next,omitempty"`
	Runs     int64      `json:"runs"`
	Failures int64      `json:"failures"`
	LastErr  string     `json:"last_error,omitempty"`
}

// jobsHandler 按下一次执行时间列出任务.
func jobsHandler(s scheduler.Scheduler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		entries := s.Upcoming()
		views := make([]jobView, 0, len(entries))
		for _, e := range entries {
			v := jobView{
				Name:     e.Name,
				Schedule: fmt.Sprint(e.Trigger),
				Status:   e.Status.String(),
				Running:  e.Running,
			}
			if e.HasNext {
				next := e.Next
				v.Next = &next
			}
			if job, ok := s.Get(e.Name); ok {
				stats := job.Stats()
				v.Runs = stats.RunCount
				v.Failures = stats.FailCount
				if stats.LastError != nil {
					v.LastErr = stats.LastError.Error()
				}
			}
			views = append(views, v)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(views)
	})
}

// healthHandler 调度器运行中返回 200，否则返回 503.
func healthHandler(s scheduler.Scheduler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		state := s.State()
		if state != scheduler.StateStarted {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_, _ = fmt.Fprintln(w, state.String())
	})
}
