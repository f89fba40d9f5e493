// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	CobraToolsNotFoundId Id = iota + 1
	ManifestNotFoundId
	OVLPathsNotFoundId
	ModNameMissingId
	ConfigLoadFailedId
	DevSourceNotFoundId
	DevPortInUseId
)

type MarkdownMsg string

type Issue struct {
	id    Id          // ID used to lookup the issue
	mdMsg MarkdownMsg // Markdown text that will be rendered
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the issue with a glamour style ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	if stylePath == "" {
		stylePath = "dark"
	}
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	cobraToolsNotFoundIssue = &Issue{
		id: CobraToolsNotFoundId,
		mdMsg: `
# Cobra Tools not found!

The build needs a checkout of Cobra Tools that contains ` + "`ovl_tool_cmd.py`" + `.

## Things you can try:
- Pass the checkout as the first argument:
~~~
$ modkit build ~/src/cobra-tools Mod_ProTrack/Manifest.xml
~~~
- Or set it once and pass ` + "`-`" + `:
~~~
$ export COBRA_TOOLS_PATH=~/src/cobra-tools
$ modkit build - Mod_ProTrack/Manifest.xml
~~~
- Make sure Python can run the tool:
~~~
$ python ~/src/cobra-tools/ovl_tool_cmd.py --help
~~~`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# Manifest.xml not found!

The second argument must point at the mod's ` + "`Manifest.xml`" + `. All OVL paths are
resolved relative to the directory that holds it.

## Things you can try:
- Check the path for typos
- Run the build from the repository root:
~~~
$ modkit build "$COBRA_TOOLS_PATH" Mod_ProTrack/Manifest.xml
~~~`,
	}

	ovlPathsNotFoundIssue = &Issue{
		id: OVLPathsNotFoundId,
		mdMsg: `
# No .ovlpaths file!

Next to ` + "`Manifest.xml`" + ` there must be a ` + "`.ovlpaths`" + ` file listing the folders to package,
one per line. Blank lines and lines starting with ` + "`#`" + ` are ignored.

## Example:
~~~
# OVL folders
./Main
./Shared/Audio
~~~

A folder may contain a ` + "`.uipackages`" + ` file in the same format listing UI folders that
are bundled into ` + "`.ppuipkg`" + ` files before the OVL is built.`,
	}

	modNameMissingIssue = &Issue{
		id: ModNameMissingId,
		mdMsg: `
# Manifest.xml has no name!

The distribution archive is rooted at the mod's display name, read from the
` + "`<Name>`" + ` element of ` + "`Manifest.xml`" + `.

## Example:
~~~xml
<Manifest>
  <Name>Mod_ProTrack</Name>
</Manifest>
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Show the resolved configuration file:
~~~
$ modkit config path
~~~
- Recreate a default configuration:
~~~
$ modkit config init
~~~
- Check the CUE syntax of the file and the field names against
  ` + "`modkit config show`" + `.`,
	}

	devSourceNotFoundIssue = &Issue{
		id: DevSourceNotFoundId,
		mdMsg: `
# UI source folder not found!

The dev server mirrors a UI source folder into a test folder.

## Things you can try:
- Point it at the folder:
~~~
$ modkit serve --source Main/ProTrackUI/UIGameface --target "$HOME/UI Test Environment/UIGameface"
~~~
- Or set ` + "`dev.source_dir`" + ` in your configuration file.`,
	}

	devPortInUseIssue = &Issue{
		id: DevPortInUseId,
		mdMsg: `
# Cannot listen on the dev server port!

Another process (often a previous ` + "`modkit serve`" + `) is using the port.

## Things you can try:
- Stop the other server
- Use a different port:
~~~
$ modkit serve --port 8001
~~~`,
	}

	issues = map[Id]*Issue{
		cobraToolsNotFoundIssue.Id(): cobraToolsNotFoundIssue,
		manifestNotFoundIssue.Id():   manifestNotFoundIssue,
		ovlPathsNotFoundIssue.Id():   ovlPathsNotFoundIssue,
		modNameMissingIssue.Id():     modNameMissingIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		devSourceNotFoundIssue.Id():  devSourceNotFoundIssue,
		devPortInUseIssue.Id():       devPortInUseIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return int(a.id) - int(b.id)
	})
}

func Get(id Id) *Issue {
	return issues[id]
}
