// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes workspace tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/workbench/internal/content"
	"github.com/starford/workbench/internal/models"
	"github.com/starford/workbench/internal/workspace"
)

const guideURI = "workbench://guide"

// Server wraps the MCP server with workspace tools.
type Server struct {
	mcp   *server.MCPServer
	store *workspace.Store
	links *workspace.LinkSaver
}

// New creates a new MCP server with all workspace tools registered.
func New(store *workspace.Store, links *workspace.LinkSaver, version string) *Server {
	if links == nil {
		links = workspace.NewLinkSaver(store, nil, 0, nil)
	}
	s := &Server{store: store, links: links}

	s.mcp = server.NewMCPServer(
		"Workbench",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, pinned first. Archived notes are excluded unless requested."),
		mcp.WithBoolean("pinned", mcp.Description("Only pinned notes")),
		mcp.WithBoolean("archived", mcp.Description("List archived notes instead")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. Read the workspace guide via the get_guide tool "+
			"or the workbench://guide resource for colors and conventions."),
		mcp.WithString("title", mcp.Description("Note title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note text")),
		mcp.WithString("color", mcp.Enum("blue", "green", "yellow", "pink", "purple", "neutral")),
		mcp.WithArray("tags", mcp.WithStringItems(), mcp.Description("Tags")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks."),
		mcp.WithString("filter", mcp.Enum("all", "active", "completed")),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a task."),
		mcp.WithString("title", mcp.Required(), mcp.Description("What needs doing")),
		mcp.WithString("due", mcp.Description("Due date, YYYY-MM-DD or RFC 3339")),
		mcp.WithString("priority", mcp.Enum("low", "medium", "high")),
		mcp.WithString("project", mcp.Description("Optional project name")),
	), s.addTask)

	s.mcp.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Toggle a task between completed and open."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task ID")),
	), s.completeTask)

	s.mcp.AddTool(mcp.NewTool("save_link",
		mcp.WithDescription("Save a link. Page metadata is fetched in the background."),
		mcp.WithString("url", mcp.Required(), mcp.Description("URL to save; https:// is assumed when missing")),
		mcp.WithString("title", mcp.Description("Title to use instead of the page title")),
	), s.saveLink)

	s.mcp.AddTool(mcp.NewTool("list_prompts",
		mcp.WithDescription("List prompt templates."),
		mcp.WithString("sort", mcp.Enum("recent", "used", "alpha")),
	), s.listPrompts)

	s.mcp.AddTool(mcp.NewTool("fill_prompt",
		mcp.WithDescription("Fill a prompt template's {{variables}} and count the use."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Prompt ID")),
		mcp.WithObject("values", mcp.Description("Variable values keyed by name")),
	), s.fillPrompt)

	s.mcp.AddTool(mcp.NewTool("export_doc",
		mcp.WithDescription("Export a document as Markdown or standalone HTML."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document ID")),
		mcp.WithString("format", mcp.Enum("md", "html"), mcp.Description("Export format (default md)")),
	), s.exportDoc)

	s.mcp.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Search notes, tasks, links, docs and prompts."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.search)

	s.mcp.AddTool(mcp.NewTool("today",
		mcp.WithDescription("Due tasks, pinned notes and recent documents."),
	), s.today)

	s.mcp.AddTool(mcp.NewTool("get_guide",
		mcp.WithDescription("Returns the workspace guide. Call this before adding entities."),
	), s.getGuide)

	s.mcp.AddResource(
		mcp.NewResource(guideURI, "Workspace Guide",
			mcp.WithResourceDescription("Collections, fields and conventions of the workspace."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGuideResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if req.GetBool("archived", false) {
		return jsonResult(s.store.ArchivedNotes())
	}
	return jsonResult(s.store.ActiveNotes(req.GetBool("pinned", false)))
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.store.CreateNote(models.NoteInput{
		Title: req.GetString("title", ""),
		Body:  body,
		Color: models.NoteColor(req.GetString("color", "")),
		Tags:  req.GetStringSlice("tags", nil),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(n)
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := workspace.ParseTaskFilter(req.GetString("filter", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.store.FilterTasks(f))
}

func (s *Server) addTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(title) == "" {
		return mcp.NewToolResultError("title is required"), nil
	}
	in := models.TaskInput{
		Title:    strings.TrimSpace(title),
		Priority: models.Priority(req.GetString("priority", "")),
		Project:  req.GetString("project", ""),
	}
	if raw := req.GetString("due", ""); raw != "" {
		due, err := parseDue(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		in.DueDate = &due
	}
	t, err := s.store.CreateTask(in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t)
}

func parseDue(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: want YYYY-MM-DD", raw)
	}
	return t.UTC(), nil
}

func (s *Server) completeTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !s.store.ToggleTaskComplete(id) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	t, _ := s.store.Task(id)
	return jsonResult(t)
}

func (s *Server) saveLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	l, err := s.links.Save(models.LinkInput{URL: url, Title: req.GetString("title", "")})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(l)
}

func (s *Server) listPrompts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	by, err := workspace.ParsePromptSort(req.GetString("sort", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.store.SortedPrompts(by))
}

func (s *Server) fillPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	values := map[string]string{}
	if raw, ok := req.GetArguments()["values"].(map[string]any); ok {
		for k, v := range raw {
			values[k] = fmt.Sprint(v)
		}
	}
	text, err := s.store.FillPrompt(id, values)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) exportDoc(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, ok := s.store.Doc(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	title := models.DisplayTitle(d.Title)
	switch format := req.GetString("format", "md"); format {
	case "md", "markdown":
		return mcp.NewToolResultText(content.ExportMarkdown(title, d.Content)), nil
	case "html":
		out, err := content.ExportHTML(title, d.Content)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
	}
}

func (s *Server) search(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.store.Search(query))
}

func (s *Server) today(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.store.Today())
}

func (s *Server) getGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(WorkspaceGuide), nil
}

func (s *Server) readGuideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      guideURI,
			MIMEType: "text/markdown",
			Text:     WorkspaceGuide,
		},
	}, nil
}
