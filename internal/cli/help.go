package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(warningColor).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

const helpExamples = `  visual-artifacts --mode webcam --modules Tracker
  visual-artifacts --mode live --modules ColorChaos --video clip --debug
  visual-artifacts --mode render --modules Grunge --video clip
  visual-artifacts --mode live --modules ColorChaos --effects hue_shift rgb_split
  visual-artifacts --configure assets_video assets/videos/`

// StyledHelpPrinter renders kong's flag model with lipgloss styles.
func StyledHelpPrinter(title, description string) kong.HelpPrinter {
	return func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		sb.WriteString(helpTitleStyle.Render(title))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render(description))
		sb.WriteString("\n")

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(fmt.Sprintf("%s [flags]", ctx.Model.Name))
		sb.WriteString("\n")

		flags := getFlags(ctx)
		if len(flags) > 0 {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render("Flags:"))
			sb.WriteString("\n")
			for _, f := range flags {
				sb.WriteString("  ")
				sb.WriteString(helpFlagStyle.Render(f.flags))
				if f.help != "" {
					sb.WriteString("  ")
					sb.WriteString(f.help)
				}
				if f.defaultVal != "" {
					sb.WriteString(" ")
					sb.WriteString(helpDefaultStyle.Render("(default: " + f.defaultVal + ")"))
				}
				sb.WriteString("\n")
			}
		}

		sb.WriteString("\n")
		sb.WriteString(helpSectionStyle.Render("Examples:"))
		sb.WriteString("\n")
		sb.WriteString(helpExamples)
		sb.WriteString("\n\n")

		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

type flag struct {
	flags      string
	help       string
	defaultVal string
}

func getFlags(ctx *kong.Context) []flag {
	flags := []flag{{flags: "-h, --help", help: "Show context-sensitive help."}}

	for _, f := range ctx.Model.Node.Flags {
		if f.Name == "help" {
			continue
		}

		flagStr := fmt.Sprintf("--%s", f.Name)
		if f.Short != 0 {
			flagStr = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		}
		if !f.IsBool() && f.PlaceHolder != "" {
			flagStr += "=" + strings.ToUpper(f.PlaceHolder)
		}

		flags = append(flags, flag{
			flags:      flagStr,
			help:       f.Help,
			defaultVal: f.Default,
		})
	}

	return flags
}
