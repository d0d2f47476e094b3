package main

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
)

type checkResult struct {
	path string
	err  error
}

func newCheckCmd(a *app) *cobra.Command {
	var (
		jobs    int
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Parse files concurrently and report each result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			start := time.Now()
			results, err := a.checkFiles(args, jobs)
			if err != nil {
				return err
			}
			a.logger.Debug("check done", "files", len(results), "jobs", jobs, "elapsed", time.Since(start))

			ok := color.New(color.FgGreen)
			fail := color.New(color.FgRed, color.Bold)
			failed := 0
			for _, r := range results {
				if r.err != nil {
					failed++
					fail.Fprint(a.stdout, "FAIL")
					fmt.Fprintf(a.stdout, " %s: %v\n", r.path, r.err)
					continue
				}
				ok.Fprint(a.stdout, "ok")
				fmt.Fprintf(a.stdout, "   %s\n", r.path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of files parsed at once")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}

// checkFiles parses every file on a pool of at most jobs goroutines. Results
// keep the order of paths.
func (a *app) checkFiles(paths []string, jobs int) ([]checkResult, error) {
	if jobs < 1 {
		jobs = 1
	}
	pool, err := ants.NewPool(jobs)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]checkResult, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		i, path := i, path
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			_, err := a.parseFile(path)
			results[i] = checkResult{path: path, err: err}
		})
		if err != nil {
			wg.Done()
			results[i] = checkResult{path: path, err: err}
		}
	}
	wg.Wait()
	return results, nil
}
