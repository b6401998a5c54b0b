// Package mcp exposes the reviewer's lesson store and pipeline as MCP
// tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/memory"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/models"
)

// Reviewer runs the review pipeline for one event.
type Reviewer interface {
	Process(ctx context.Context, event models.Event) error
}

// Server wraps the lesson store and the pipeline as MCP tools.
type Server struct {
	store    memory.Store
	reviewer Reviewer // nil when no pipeline is wired (teach-only mode)
}

// NewServer creates the MCP server wrapper.
func NewServer(store memory.Store, reviewer Reviewer) *Server {
	return &Server{store: store, reviewer: reviewer}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("ai-pr-reviewer", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.teachLessonTool())
	srv.AddTool(s.searchLessonsTool())
	srv.AddTool(s.listLessonsTool())
	if s.reviewer != nil {
		srv.AddTool(s.reviewPRTool())
	}

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// reviewer_teach_lesson
func (s *Server) teachLessonTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("reviewer_teach_lesson",
		mcp.WithDescription("Store one review lesson for future retrieval. The text is scrubbed of secrets and PII before it is persisted."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The lesson text")),
		mcp.WithString("category", mcp.Description("Free-form category label, e.g. security or clean_code")),
	)
	return tool, s.handleTeachLesson
}

func (s *Server) handleTeachLesson(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	category := request.GetString("category", "general")

	id, err := s.store.Add(ctx, text, category)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store lesson: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"id": %q}`, id)), nil
}

// reviewer_search_lessons
func (s *Server) searchLessonsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("reviewer_search_lessons",
		mcp.WithDescription("Find stored lessons similar to a query, most similar first. Returns a JSON array of lesson texts."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for")),
		mcp.WithNumber("top_k", mcp.Description("Maximum number of lessons to return (default 3)")),
	)
	return tool, s.handleSearchLessons
}

func (s *Server) handleSearchLessons(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	topK := request.GetInt("top_k", 3)

	lessons, err := s.store.Search(ctx, query, topK)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to search lessons: %v", err)), nil
	}

	data, err := json.Marshal(lessons)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal lessons: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// reviewer_list_lessons
func (s *Server) listLessonsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("reviewer_list_lessons",
		mcp.WithDescription("List all stored lessons, newest first. Returns a JSON array with id, text, category, and created_at."),
	)
	return tool, s.handleListLessons
}

func (s *Server) handleListLessons(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lessons, err := s.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list lessons: %v", err)), nil
	}

	type lessonOut struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		Category  string `json:"category"`
		CreatedAt string `json:"created_at"`
	}

	out := make([]lessonOut, len(lessons))
	for i, l := range lessons {
		out[i] = lessonOut{
			ID:        l.ID,
			Text:      l.Text,
			Category:  l.Category,
			CreatedAt: l.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal lessons: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// reviewer_review_pr
func (s *Server) reviewPRTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("reviewer_review_pr",
		mcp.WithDescription("Run a full review of a pull request and post the result as a comment."),
		mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/name form")),
		mcp.WithNumber("pr", mcp.Required(), mcp.Description("Pull request number")),
	)
	return tool, s.handleReviewPR
}

func (s *Server) handleReviewPR(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo, err := request.RequireString("repo")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: repo"), nil
	}
	pr := request.GetInt("pr", 0)
	if pr <= 0 {
		return mcp.NewToolResultError("missing required parameter: pr"), nil
	}

	event := models.Event{Action: models.ActionOpened, Repo: repo, PRNumber: pr}
	if err := s.reviewer.Process(ctx, event); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("review failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("review published for %s#%d", repo, pr)), nil
}
