package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"favsort/internal/classifier"
	"favsort/internal/organizer"
	"favsort/internal/pipeline"
	"favsort/internal/services/bilibili"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var folderFlag string
	var targetFlags []string
	var batchSize int

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a folder's items and move them into target folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireLLM(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			client, err := ctx.catalogClient()
			if err != nil {
				return err
			}

			folders, err := client.ListFolders(cmd.Context())
			if err != nil {
				return err
			}
			if len(folders) < 2 {
				return fmt.Errorf("classification needs at least two folders, found %d", len(folders))
			}

			out := cmd.OutOrStdout()
			in := cmd.InOrStdin()
			interactive := folderFlag == "" || len(targetFlags) == 0
			if interactive {
				if !stdinIsTerminal() {
					return fmt.Errorf("stdin is not a terminal; pass --folder and --targets for non-interactive use")
				}
				printFolderList(out, folders)
			}

			var source bilibili.Folder
			if folderFlag != "" {
				source, err = findFolder(folders, folderFlag)
				if err != nil {
					return err
				}
			} else {
				source, err = promptFolderChoice(in, out, "Source folder", folders)
				if err != nil {
					return err
				}
			}

			targets := targetFlags
			if len(targets) == 0 {
				targets, err = promptTargetChoice(in, out, folders, source.ID)
				if err != nil {
					return err
				}
			} else if err := validateTargets(folders, source, targets); err != nil {
				return err
			}

			size := batchSize
			if size <= 0 {
				size = cfg.LLM.BatchSize
			}

			cls := classifier.NewClient(classifier.Config{
				APIKey:         cfg.LLM.APIKey,
				BaseURL:        cfg.LLM.BaseURL,
				Model:          cfg.LLM.Model,
				TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			}, logger)
			engine := organizer.NewEngine(client, logger,
				organizer.WithMoveDelay(client.RequestDelay()))
			runner := pipeline.NewRunner(client, cls, engine, logger,
				pipeline.WithProgress(func(p pipeline.Progress) {
					switch p.Stage {
					case pipeline.StageFetching:
						fmt.Fprintf(out, "Fetching items from %q...\n", source.Title)
					case pipeline.StageClassifying:
						fmt.Fprintf(out, "Classifying batch %d/%d...\n", p.BatchIndex, p.BatchCount)
					case pipeline.StageReconciling:
						fmt.Fprintf(out, "Moving %d classified items...\n", p.ItemsTotal)
					}
				}))

			report, err := runner.Run(cmd.Context(), pipeline.Request{
				SourceFolderID: source.ID,
				Targets:        targets,
				BatchSize:      size,
			})
			if err != nil {
				return err
			}
			if len(report.Outcomes) == 0 {
				fmt.Fprintf(out, "Folder %q is empty; nothing to classify\n", source.Title)
				return nil
			}

			printOutcomes(out, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&folderFlag, "folder", "", "Source folder title or ID")
	cmd.Flags().StringSliceVar(&targetFlags, "targets", nil, "Target folder titles")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Items per classification request (defaults to llm.batch_size)")
	return cmd
}

func printFolderList(out io.Writer, folders []bilibili.Folder) {
	rows := make([][]string, 0, len(folders))
	for i, folder := range folders {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			truncateTitle(folder.Title, 60),
			strconv.Itoa(folder.ItemCount),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Title", "Items"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight},
	))
}

// findFolder resolves a --folder value: an exact title match wins, a numeric
// value falls back to the folder ID.
func findFolder(folders []bilibili.Folder, value string) (bilibili.Folder, error) {
	trimmed := strings.TrimSpace(value)
	for _, folder := range folders {
		if folder.Title == trimmed {
			return folder, nil
		}
	}
	if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		for _, folder := range folders {
			if folder.ID == id {
				return folder, nil
			}
		}
	}
	return bilibili.Folder{}, fmt.Errorf("no favorites folder matches %q", value)
}

func validateTargets(folders []bilibili.Folder, source bilibili.Folder, targets []string) error {
	titles := make(map[string]struct{}, len(folders))
	for _, folder := range folders {
		titles[folder.Title] = struct{}{}
	}
	for _, target := range targets {
		if _, ok := titles[target]; !ok {
			return fmt.Errorf("no favorites folder titled %q", target)
		}
		if target == source.Title {
			return fmt.Errorf("folder %q is the source folder and cannot be a target", target)
		}
	}
	return nil
}

func printOutcomes(out io.Writer, report *pipeline.Report) {
	rows := make([][]string, 0, len(report.Outcomes))
	for _, outcome := range report.Outcomes {
		category := outcome.Category
		if category == "" {
			category = "-"
		}
		rows = append(rows, []string{
			truncateTitle(outcome.Item.Title, 40),
			category,
			outcome.Result.String(),
			outcome.Reason,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Title", "Category", "Result", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "Moved %d, skipped %d, failed %d\n", report.Moved, report.Skipped, report.Failed)
}
