package mcpserver

// FrontMatterContract describes the front-matter fields the collections and
// layouts read, per content section.
const FrontMatterContract = `# Gazette Front Matter Contract

Content lives under the source directory as Markdown (` + "`.md`" + `) or HTML files with
an optional YAML front-matter block fenced by ` + "`---`" + ` lines.

## Common fields

| field | type | meaning |
|---|---|---|
| ` + "`title`" + ` | string | Display title. Falls back to ` + "`name`" + `, then the first H1. |
| ` + "`date`" + ` | date or datetime | Publication instant. Falls back to a ` + "`YYYY-MM-DD-`" + ` filename prefix. Undated items are never live. |
| ` + "`draft`" + ` | bool | Drafts are excluded from every live collection. |
| ` + "`slug`" + ` | string | Key in the memoized collection. Defaults to the file slug. |
| ` + "`tags`" + ` | list of strings | Feeds tagList and tagsPaged. ` + "`all`, `nav`, `post`, `posts`" + ` are reserved. |
| ` + "`layout`" + ` | string | Layout under ` + "`_includes/layouts`" + `, without extension. |
| ` + "`permalink`" + ` | string or false | Output URL override. ` + "`false`" + ` skips writing the page. |

## Sections

- ` + "`posts/`" + `: live items only (date not in the future, not a draft), newest first.
  ` + "`category`" + ` and ` + "`author`" + ` name the slug of a category or author page.
- ` + "`categories/`" + ` and ` + "`authors/`" + `: sorted by ` + "`name`" + `; items without a name sort last.
  Authors with ` + "`staff: true`" + ` also appear in authorsStaff.
- ` + "`newsletter/`" + `: live issues, newest first.
- ` + "`staff-picks/`" + `: kept in source order.

## Example

` + "```" + `markdown
---
title: Shipping the new search
date: 2024-05-02
category: engineering
author: jane
tags:
  - search
  - go
---

{{ cloudinaryImage "https://example.com/search.png" "Search results" 800 450 }}

Body text in Markdown. Footnotes[^1] and ++inserted text++ are supported.

[^1]: Like this.
` + "```" + `
`
