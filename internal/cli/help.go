package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(warnColor).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(warnColor).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AA00")).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// helpExamples are shown after the flag list
var helpExamples = []struct{ command, note string }{
	{"noisegrab interview.flac", "writes interview-noise.wav"},
	{"noisegrab -o room.wav --report take1.wav", "custom output plus a .log report"},
	{"noisegrab --dry-run --plain *.wav", "analyse only, no TUI"},
	{"noisegrab -c studio.yaml --block-ms 200 take1.wav", "config file, one value overridden"},
}

// StyledHelpPrinter creates a custom help printer with Lipgloss styling
func StyledHelpPrinter(options kong.HelpOptions) func(options kong.HelpOptions, ctx *kong.Context) error {
	return func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		sb.WriteString(helpTitleStyle.Render("Noisegrab 🤫"))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render(ctx.Model.Help))
		sb.WriteString("\n")

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		fmt.Fprintf(&sb, "\n  %s [flags] <files> ...\n", ctx.Model.Name)

		if args := getArguments(ctx); len(args) > 0 {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render("Arguments:"))
			sb.WriteString("\n")
			for _, arg := range args {
				sb.WriteString("  ")
				sb.WriteString(helpArgStyle.Render(arg.name))
				if arg.help != "" {
					sb.WriteString("  " + arg.help)
				}
				sb.WriteString("\n")
			}
		}

		if flags := getFlags(ctx); len(flags) > 0 {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render("Flags:"))
			sb.WriteString("\n")
			writeAlignedFlags(&sb, flags)
		}

		sb.WriteString("\n")
		sb.WriteString(helpSectionStyle.Render("Examples:"))
		sb.WriteString("\n")
		for _, ex := range helpExamples {
			fmt.Fprintf(&sb, "  %s\n      %s\n", ex.command, helpDefaultStyle.Render(ex.note))
		}

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

type argument struct {
	name string
	help string
}

type flag struct {
	flags      string
	help       string
	defaultVal string
}

// writeAlignedFlags pads flag names to a common width so help text lines up.
// Padding is computed before styling; ANSI codes have no display width.
func writeAlignedFlags(sb *strings.Builder, flags []flag) {
	width := 0
	for _, f := range flags {
		width = max(width, len(f.flags))
	}

	for _, f := range flags {
		sb.WriteString("  ")
		sb.WriteString(helpFlagStyle.Render(f.flags))
		if f.help != "" {
			sb.WriteString(strings.Repeat(" ", width-len(f.flags)+2))
			sb.WriteString(f.help)
		}
		if f.defaultVal != "" {
			sb.WriteString(" ")
			sb.WriteString(helpDefaultStyle.Render("(default: " + f.defaultVal + ")"))
		}
		sb.WriteString("\n")
	}
}

func getArguments(ctx *kong.Context) []argument {
	var args []argument
	for _, arg := range ctx.Model.Node.Positional {
		args = append(args, argument{name: arg.Summary(), help: arg.Help})
	}
	return args
}

func getFlags(ctx *kong.Context) []flag {
	flags := []flag{{
		flags: "-h, --help",
		help:  "Show context-sensitive help.",
	}}

	for _, f := range ctx.Model.Node.Flags {
		if f.Name == "help" || f.Hidden {
			continue
		}

		flagStr := "--" + f.Name
		if f.Short != 0 {
			flagStr = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		}
		if !f.IsBool() && f.PlaceHolder != "" {
			flagStr += "=" + strings.ToUpper(f.PlaceHolder)
		}

		def := ""
		if f.HasDefault {
			def = f.Default
		}
		flags = append(flags, flag{
			flags:      flagStr,
			help:       f.Help,
			defaultVal: def,
		})
	}

	return flags
}
