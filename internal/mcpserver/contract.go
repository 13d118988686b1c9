package mcpserver

// WorkspaceGuide describes the workspace collections and the conventions LLM
// consumers should follow when adding to them.
const WorkspaceGuide = `# Workbench Guide

The workspace holds five collections. Every entity has an opaque ` + "`" + `id` + "`" + `,
` + "`" + `createdAt` + "`" + ` and ` + "`" + `updatedAt` + "`" + `. New entities are listed first.

## Notes

Short free-form text with a color (blue, green, yellow, pink, purple, neutral),
tags, and pinned/archived flags. Archived notes are hidden from listings and
search until restored.

## Tasks

A title (required), an optional due date (` + "`" + `YYYY-MM-DD` + "`" + `), a priority
(low, medium, high; default medium) and a completed flag. Completing an already
completed task reopens it.

## Links

Saved URLs. A missing scheme becomes ` + "`" + `https://` + "`" + `. The title defaults to
the domain and is replaced by the page title once it has been fetched.
YouTube and Vimeo URLs are recognized as videos.

## Docs

Rich-text documents. Export them with ` + "`" + `export_doc` + "`" + ` as Markdown or as a
standalone HTML page. Untitled documents export as "Untitled".

## Prompts

Reusable templates with ` + "`" + `{{variable}}` + "`" + ` placeholders (letters, digits and
underscore). ` + "`" + `fill_prompt` + "`" + ` substitutes values and counts one use;
placeholders without a value stay as they are.

## Example template

` + "```" + `
Summarize {{topic}} for {{audience}} in three bullet points.
` + "```" + `
`
