package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aportsknife/aportsknife/internal/aports"
	"github.com/aportsknife/aportsknife/internal/common/config"
	"github.com/aportsknife/aportsknife/internal/common/output"
	"github.com/aportsknife/aportsknife/internal/common/xdg"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize aportsknife configuration",
	Long: `Initialize aportsknife configuration interactively.
Creates a config file with the aports path, base branch and git identity.`,
	Args: cobra.NoArgs,
	Run:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	reader := bufio.NewReader(os.Stdin)
	prompter := aports.NewLinePrompter(reader, os.Stdout)

	existingPath, exists, err := config.FindConfigPath()
	if err != nil {
		fatal("%v", err)
	}
	if exists {
		output.PrintWarning("Config already exists at: %s", existingPath)
		ok, err := prompter.Confirm("Overwrite? [y/N]")
		if err != nil || !ok {
			fmt.Println("Aborted.")
			return
		}
	}

	cfg := config.New()

	fmt.Println()
	output.PrintInfo("aports configuration")
	fmt.Println()

	cwd, _ := os.Getwd()
	aportsPath := ask(reader, "aports path", defaultAportsPath(cwd))
	if expanded, err := xdg.ExpandHome(aportsPath); err == nil {
		aportsPath = expanded
	}
	if result := config.ValidateAportsStructure(aportsPath); !result.Valid {
		for _, e := range result.Errors {
			output.PrintWarning("%s: %s", aportsPath, e)
		}
	} else {
		output.PrintSuccess("Found repositories: %s", strings.Join(result.Repositories, ", "))
	}
	cfg.General.AportsPath = aportsPath

	cfg.General.BaseBranch = ask(reader, "Base branch", cfg.General.BaseBranch)

	jobs := ask(reader, "Parallel jobs", strconv.Itoa(cfg.General.Jobs))
	if n, err := strconv.Atoi(jobs); err == nil && n > 0 {
		cfg.General.Jobs = n
	} else {
		output.PrintWarning("Invalid job count %q, using %d", jobs, cfg.General.Jobs)
	}

	user, email, err := cfg.GetGitUser()
	if err != nil {
		fmt.Println()
		output.PrintWarning("Git user not configured in ~/.gitconfig")
		fmt.Println("You can configure it here or run:")
		fmt.Println("  git config --global user.name \"Your Name\"")
		fmt.Println("  git config --global user.email \"your@email.com\"")
		fmt.Println()

		cfg.Git.User = ask(reader, "Git user name", "")
		cfg.Git.Email = ask(reader, "Git email", "")
	} else {
		output.PrintSuccess("Using git config: %s <%s>", user, email)
	}

	configPath, err := config.DefaultConfigPath()
	if err != nil {
		fatal("%v", err)
	}
	if err := cfg.SaveTo(configPath); err != nil {
		fatal("failed to save config: %v", err)
	}

	fmt.Println()
	output.PrintSuccess("Configuration saved to: %s", configPath)
	fmt.Println()
	fmt.Println("You can now use:")
	fmt.Println("  aportsknife list --from <pkgver>      - Find packages at a version")
	fmt.Println("  aportsknife update <new> --from <old> - Bump them")
	fmt.Println("  aportsknife build --modified          - Build what changed")
}

// ask prints a prompt with its default and returns the trimmed answer or
// the default when the answer is empty.
func ask(reader *bufio.Reader, prompt, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", prompt, def)
	} else {
		fmt.Printf("%s: ", prompt)
	}
	input, _ := reader.ReadString('\n')
	if input = strings.TrimSpace(input); input != "" {
		return input
	}
	return def
}

// defaultAportsPath suggests the working directory when it is an aports
// checkout, ~/aports otherwise.
func defaultAportsPath(cwd string) string {
	if cwd != "" && filepath.Base(cwd) == "aports" {
		return cwd
	}
	return "~/aports"
}
