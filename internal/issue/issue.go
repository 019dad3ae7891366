// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	RootFileNotFoundId Id = iota + 1
	IncludeNotFoundId
	IncludeCycleId
	IncludeDepthExceededId
	ConfigLoadFailedId
	OutputWriteFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the issue Markdown with the given glamour style
// ("dark", "light", "auto" or a path to a style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	rootFileNotFoundIssue = &Issue{
		id: RootFileNotFoundId,
		mdMsg: `
# Root file not found!

amalgam starts from a single root file and follows its local includes.
The root file is looked up relative to the current working directory.

## Things you can try:
- Run amalgam from the directory that contains the root file
- Name the root file explicitly:
~~~
$ amalgam --input path/to/Masterfile.hpp
~~~
- Set it once in your configuration:
~~~cue
input: "Masterfile.hpp"
~~~`,
	}

	includeNotFoundIssue = &Issue{
		id: IncludeNotFoundId,
		mdMsg: `
# Include not found!

A ` + "`#include \"...\"`" + ` target could not be opened.

Include paths are resolved against the **current working directory**, not the
directory of the file containing the directive.

## Things you can try:
- Run amalgam from the directory the include paths are relative to
- Add the directories holding your headers as search paths:
~~~
$ amalgam -I include -I third_party
~~~
- Expand missing files as empty instead of failing:
~~~cue
missing_include: "empty"
~~~`,
	}

	includeCycleIssue = &Issue{
		id: IncludeCycleId,
		mdMsg: `
# Include cycle detected!

A file was included again while it was still being expanded. Without a
` + "`#pragma once`" + ` directive ahead of the include, this would recurse forever.

## Things you can try:
- Add ` + "`#pragma once`" + ` at the top of the files in the cycle
- Remove the include that closes the cycle`,
	}

	includeDepthExceededIssue = &Issue{
		id: IncludeDepthExceededId,
		mdMsg: `
# Include depth limit exceeded!

Includes nest deeper than the configured ` + "`max_depth`" + `. This usually means
a cycle between files that are not once-protected.

## Things you can try:
- Add ` + "`#pragma once`" + ` to the files involved
- Enable cycle detection to see the offending chain:
~~~
$ amalgam --detect-cycles
~~~
- Raise or disable the limit (0 disables it):
~~~cue
max_depth: 0
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the amalgam configuration file.

## Configuration file locations:
- Linux: ~/.config/amalgam/config.cue
- macOS: ~/Library/Application Support/amalgam/config.cue
- Windows: %APPDATA%\amalgam\config.cue
- Fallback: ./config.cue

## Things you can try:
- Create a default configuration:
~~~
$ amalgam config init
~~~
- Check the configuration syntax

## Example configuration:
~~~cue
input:           "Masterfile.hpp"
output:          "ArgonMaster.hpp"
missing_include: "empty"
search_paths: ["include"]
~~~`,
	}

	outputWriteFailedIssue = &Issue{
		id: OutputWriteFailedId,
		mdMsg: `
# Failed to write the output file!

The flattened result is written to a temporary file next to the output and
then renamed into place. Any previous output was left untouched.

## Things you can try:
- Check that the output directory exists and is writable
- Check the free disk space`,
	}

	issues = map[Id]*Issue{
		rootFileNotFoundIssue.Id():     rootFileNotFoundIssue,
		includeNotFoundIssue.Id():      includeNotFoundIssue,
		includeCycleIssue.Id():         includeCycleIssue,
		includeDepthExceededIssue.Id(): includeDepthExceededIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		outputWriteFailedIssue.Id():    outputWriteFailedIssue,
	}
)

// Values returns all catalog issues ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
