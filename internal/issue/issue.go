// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Id identifies a troubleshooting guide.
type Id int

const (
	TargetReadFailedId Id = iota + 1
	TargetParseFailedId
	MissingDependencyId
	LibraryParseFailedId
	RootNameUnknownId
	ConfigLoadFailedId
	FormatterFailedId
	DependencyCycleId
)

type MarkdownMsg string

type HttpLink string

// Issue is a Markdown troubleshooting guide for one class of failure.
type Issue struct {
	id       Id
	slug     string      // name accepted by `rsbundle explain`
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

// Slug returns the guide's command-line name.
func (i *Issue) Slug() string {
	return i.slug
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Title returns the guide's first heading.
func (i *Issue) Title() string {
	for line := range strings.Lines(string(i.mdMsg)) {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return title
		}
	}
	return i.slug
}

// Render renders the guide with the given glamour style ("auto", "dark",
// "light", "notty", or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(sb.String(), stylePath)
}

var (
	render = glamour.Render

	targetReadFailedIssue = &Issue{
		id:   TargetReadFailedId,
		slug: "target-read",
		mdMsg: `
# Target file could not be read

rsbundle reads the target (the file you will submit) before anything else.

## Things you can try
- Check the path; it is the second argument:
~~~
$ rsbundle <library-root> <target-file>
~~~
- Make sure the file is readable by the current user`,
	}

	targetParseFailedIssue = &Issue{
		id:   TargetParseFailedId,
		slug: "target-parse",
		mdMsg: `
# Target file is not valid Rust

The target must parse as a Rust source file before its imports are collected.

## Things you can try
- Build it with ` + "`cargo check`" + ` and fix the reported syntax errors
- Look for unbalanced braces or an unterminated string literal`,
		extLinks: []HttpLink{"https://doc.rust-lang.org/reference/items.html"},
	}

	missingDependencyIssue = &Issue{
		id:   MissingDependencyId,
		slug: "missing-dependency",
		mdMsg: `
# Library module not found

A ` + "`use`" + ` declaration names a module that has no file under the library root.
For ` + "`lib::ds::fenwick`" + ` rsbundle looks for ` + "`ds/fenwick.rs`" + `, then ` + "`ds/fenwick/mod.rs`" + `.

## Things you can try
- Check the spelling of the module path in the target
- Check that the library root points at the directory that holds the modules
- Pass ` + "`--root-name`" + ` if the crate is not named after its directory
- Use ` + "`--lenient`" + ` to bundle what can be found and skip the rest`,
		extLinks: []HttpLink{"https://doc.rust-lang.org/reference/items/modules.html#module-source-filenames"},
	}

	libraryParseFailedIssue = &Issue{
		id:   LibraryParseFailedId,
		slug: "library-parse",
		mdMsg: `
# Library module is not valid Rust

A module reached from the target could not be parsed, so its own imports are
unknown.

## Things you can try
- Run ` + "`cargo check`" + ` in the library crate
- Run ` + "`rsbundle deps`" + ` to see which modules the target pulls in`,
	}

	rootNameUnknownIssue = &Issue{
		id:   RootNameUnknownId,
		slug: "root-name",
		mdMsg: `
# Library name could not be determined

The root name is the crate name the target uses in ` + "`use <name>::...`" + `.
rsbundle takes it from ` + "`--root-name`" + `, then ` + "`library.root_name`" + ` in the
config, then the ` + "`Cargo.toml`" + ` next to the library root, then the
directory name.

## Things you can try
- Pass ` + "`--root-name my_lib`" + `
- Set it once in ` + "`rsbundle.cue`" + `:
~~~
library: root_name: "my_lib"
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id:   ConfigLoadFailedId,
		slug: "config",
		mdMsg: `
# Configuration could not be loaded

rsbundle reads ` + "`--config`" + `, else ` + "`./rsbundle.cue`" + `, else the user config file,
and checks it against its schema. RSBUNDLE_* environment variables override
file values.

## Things you can try
- Show the file that is used and the effective values:
~~~
$ rsbundle config show
~~~
- Regenerate a default file with ` + "`rsbundle config init`" + ``,
		extLinks: []HttpLink{"https://cuelang.org/docs/tour/"},
	}

	formatterFailedIssue = &Issue{
		id:   FormatterFailedId,
		slug: "formatter",
		mdMsg: `
# Formatter failed

The bundled library is still written, unformatted, when the formatter fails.

## Things you can try
- Install rustfmt with ` + "`rustup component add rustfmt`" + `
- Use ` + "`--formatter layout`" + ` to re-indent without rustfmt`,
	}

	dependencyCycleIssue = &Issue{
		id:   DependencyCycleId,
		slug: "dependency-cycle",
		mdMsg: `
# Library modules import each other

Rust allows modules to refer to each other, so a cycle does not stop bundling.
` + "`rsbundle deps`" + ` cannot put such modules in dependency order and lists them
alphabetically instead.`,
	}

	issues = map[Id]*Issue{
		targetReadFailedIssue.Id():   targetReadFailedIssue,
		targetParseFailedIssue.Id():  targetParseFailedIssue,
		missingDependencyIssue.Id():  missingDependencyIssue,
		libraryParseFailedIssue.Id(): libraryParseFailedIssue,
		rootNameUnknownIssue.Id():    rootNameUnknownIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		formatterFailedIssue.Id():    formatterFailedIssue,
		dependencyCycleIssue.Id():    dependencyCycleIssue,
	}
)

// Values returns every guide ordered by Id.
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

// Lookup finds a guide by slug.
func Lookup(slug string) *Issue {
	for _, i := range issues {
		if i.slug == slug {
			return i
		}
	}
	return nil
}
