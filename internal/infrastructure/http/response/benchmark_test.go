package response_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cyclesync/cyclesync/internal/infrastructure/http/response"
)

type benchTask struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	ScheduledDate string   `json:"scheduled_date"`
	Phase         string   `json:"phase"`
	Reasoning     []string `json:"reasoning"`
	CreatedAt     string   `json:"created_at"`
}

func benchTasks(n int) []benchTask {
	tasks := make([]benchTask, n)
	for i := range tasks {
		tasks[i] = benchTask{
			ID:            "0195a1c2-89ab-7def-8123-456789abcdef",
			Title:         "Quarterly review",
			ScheduledDate: "2025-03-18",
			Phase:         "luteal",
			Reasoning:     []string{"Detail focus peaks", "Steady energy"},
			CreatedAt:     time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC).Format(time.RFC3339),
		}
	}
	return tasks
}

func BenchmarkOK_SingleTask(b *testing.B) {
	data := benchTasks(1)[0]
	for b.Loop() {
		response.OK(httptest.NewRecorder(), data)
	}
}

func BenchmarkOK_UpcomingPage(b *testing.B) {
	data := map[string]any{"tasks": benchTasks(100)}
	for b.Loop() {
		response.OK(httptest.NewRecorder(), data)
	}
}
