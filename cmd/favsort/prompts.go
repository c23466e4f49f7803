package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"favsort/internal/services/bilibili"
)

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// promptFolderChoice asks for a single 1-based folder number and reprompts on
// invalid input until the reader is exhausted.
func promptFolderChoice(in io.Reader, out io.Writer, prompt string, folders []bilibili.Folder) (bilibili.Folder, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s [1-%d]: ", prompt, len(folders))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return bilibili.Folder{}, err
			}
			return bilibili.Folder{}, io.ErrUnexpectedEOF
		}
		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || choice < 1 || choice > len(folders) {
			fmt.Fprintln(out, "Enter one of the listed numbers.")
			continue
		}
		return folders[choice-1], nil
	}
}

// promptTargetChoice asks for a comma-separated list of folder numbers and
// returns the chosen folder titles, excluding the source folder.
func promptTargetChoice(in io.Reader, out io.Writer, folders []bilibili.Folder, sourceID int64) ([]string, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "Target folders (comma-separated numbers, e.g. 2,3,5): ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.ErrUnexpectedEOF
		}

		titles, err := parseTargetSelection(scanner.Text(), folders, sourceID)
		if err != nil {
			fmt.Fprintln(out, err.Error())
			continue
		}
		return titles, nil
	}
}

func parseTargetSelection(input string, folders []bilibili.Folder, sourceID int64) ([]string, error) {
	var titles []string
	seen := map[int]struct{}{}
	for _, field := range strings.Split(input, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		choice, err := strconv.Atoi(field)
		if err != nil || choice < 1 || choice > len(folders) {
			return nil, fmt.Errorf("%q is not one of the listed numbers", field)
		}
		if folders[choice-1].ID == sourceID {
			return nil, fmt.Errorf("folder %d is the source folder and cannot be a target", choice)
		}
		if _, dup := seen[choice]; dup {
			continue
		}
		seen[choice] = struct{}{}
		titles = append(titles, folders[choice-1].Title)
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("choose at least one target folder")
	}
	return titles, nil
}
