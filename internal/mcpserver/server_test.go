package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/workbench/internal/content"
	"github.com/starford/workbench/internal/models"
	"github.com/starford/workbench/internal/testutil"
	"github.com/starford/workbench/internal/workspace"
)

func testServer(t *testing.T) (*Server, *workspace.Store) {
	t.Helper()
	store, _ := testutil.Store(t)
	return New(store, nil, "test"), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are called
	// directly.
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"list_notes":    srv.listNotes,
		"create_note":   srv.createNote,
		"list_tasks":    srv.listTasks,
		"add_task":      srv.addTask,
		"complete_task": srv.completeTask,
		"save_link":     srv.saveLink,
		"list_prompts":  srv.listPrompts,
		"fill_prompt":   srv.fillPrompt,
		"export_doc":    srv.exportDoc,
		"search":        srv.search,
		"today":         srv.today,
		"get_guide":     srv.getGuide,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndListNotes(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"title":   "Idea",
		"content": "Ship on Friday",
		"color":   "green",
		"tags":    []interface{}{"work"},
	})
	if r.IsError {
		t.Fatalf("create_note: %s", resultText(r))
	}

	r = callTool(t, srv, "list_notes", map[string]interface{}{})
	var notes []models.Note
	if err := json.Unmarshal([]byte(resultText(r)), &notes); err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].Color != models.ColorGreen || len(notes[0].Tags) != 1 {
		t.Errorf("notes = %+v", notes)
	}
}

func TestCreateNote_InvalidColor(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "create_note", map[string]interface{}{"content": "x", "color": "orange"})
	if !r.IsError {
		t.Error("expected error for invalid color")
	}
}

func TestAddAndCompleteTask(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "add_task", map[string]interface{}{"title": "file taxes", "due": "2026-04-15", "priority": "high"})
	if r.IsError {
		t.Fatalf("add_task: %s", resultText(r))
	}
	var task models.Task
	if err := json.Unmarshal([]byte(resultText(r)), &task); err != nil {
		t.Fatal(err)
	}
	if task.DueDate == nil || !task.DueDate.Equal(time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("due = %v", task.DueDate)
	}

	r = callTool(t, srv, "complete_task", map[string]interface{}{"id": task.ID})
	if r.IsError {
		t.Fatalf("complete_task: %s", resultText(r))
	}
	if got, _ := store.Task(task.ID); !got.Completed {
		t.Error("task not completed")
	}

	r = callTool(t, srv, "list_tasks", map[string]interface{}{"filter": "active"})
	if strings.TrimSpace(resultText(r)) != "[]" {
		t.Errorf("active tasks = %s", resultText(r))
	}
}

func TestAddTask_Errors(t *testing.T) {
	srv, _ := testServer(t)
	for _, args := range []map[string]interface{}{
		{},
		{"title": "  "},
		{"title": "x", "due": "next week"},
		{"title": "x", "priority": "urgent"},
	} {
		if r := callTool(t, srv, "add_task", args); !r.IsError {
			t.Errorf("add_task(%v) succeeded", args)
		}
	}
	if r := callTool(t, srv, "complete_task", map[string]interface{}{"id": "nope"}); !r.IsError {
		t.Error("expected error for missing task")
	}
}

func TestSaveLink(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "save_link", map[string]interface{}{"url": "example.com/post"})
	var l models.Link
	if err := json.Unmarshal([]byte(resultText(r)), &l); err != nil {
		t.Fatalf("%v: %s", err, resultText(r))
	}
	if l.URL != "https://example.com/post" || l.Title != "example.com" {
		t.Errorf("link = %+v", l)
	}

	if r := callTool(t, srv, "save_link", map[string]interface{}{"url": "   "}); !r.IsError {
		t.Error("expected error for blank url")
	}
}

func TestFillPrompt(t *testing.T) {
	srv, store := testServer(t)
	p, _ := store.CreatePrompt(models.PromptInput{Title: "Sum", Template: "Summarize {{topic}} for {{audience}}"})

	r := callTool(t, srv, "fill_prompt", map[string]interface{}{
		"id":     p.ID,
		"values": map[string]interface{}{"topic": "Go"},
	})
	if got := resultText(r); got != "Summarize Go for {{audience}}" {
		t.Errorf("filled = %q", got)
	}
	if got, _ := store.Prompt(p.ID); got.UsageCount != 1 {
		t.Errorf("usage = %d, want 1", got.UsageCount)
	}

	r = callTool(t, srv, "list_prompts", map[string]interface{}{"sort": "used"})
	if !strings.Contains(resultText(r), p.ID) {
		t.Errorf("list_prompts = %s", resultText(r))
	}
	if r := callTool(t, srv, "fill_prompt", map[string]interface{}{"id": "nope"}); !r.IsError {
		t.Error("expected error for missing prompt")
	}
}

func TestExportDoc(t *testing.T) {
	srv, store := testServer(t)
	d, _ := store.CreateDoc(models.DocInput{Content: content.Doc(content.Para("hello"))})

	r := callTool(t, srv, "export_doc", map[string]interface{}{"id": d.ID})
	if got := resultText(r); got != "# Untitled\n\nhello\n\n" {
		t.Errorf("markdown = %q", got)
	}

	r = callTool(t, srv, "export_doc", map[string]interface{}{"id": d.ID, "format": "html"})
	if !strings.Contains(resultText(r), "<p>hello</p>") {
		t.Errorf("html = %q", resultText(r))
	}

	if r := callTool(t, srv, "export_doc", map[string]interface{}{"id": d.ID, "format": "pdf"}); !r.IsError {
		t.Error("expected error for unknown format")
	}
	if r := callTool(t, srv, "export_doc", map[string]interface{}{"id": "nope"}); !r.IsError {
		t.Error("expected error for missing doc")
	}
}

func TestSearchAndToday(t *testing.T) {
	srv, store := testServer(t)
	_, _ = store.CreateNote(models.NoteInput{Title: "Recipes", Body: "pancakes", Pinned: true})

	r := callTool(t, srv, "search", map[string]interface{}{"query": "PANCAKE"})
	var hits []workspace.SearchResult
	if err := json.Unmarshal([]byte(resultText(r)), &hits); err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Title != "Recipes" {
		t.Errorf("hits = %+v", hits)
	}

	r = callTool(t, srv, "today", nil)
	var sum workspace.TodaySummary
	if err := json.Unmarshal([]byte(resultText(r)), &sum); err != nil {
		t.Fatal(err)
	}
	if len(sum.PinnedNotes) != 1 {
		t.Errorf("today = %+v", sum)
	}
}

func TestGuide(t *testing.T) {
	srv, _ := testServer(t)
	if got := resultText(callTool(t, srv, "get_guide", nil)); got != WorkspaceGuide {
		t.Error("guide mismatch")
	}
	contents, err := srv.readGuideResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
}
