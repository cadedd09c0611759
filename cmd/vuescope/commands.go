package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"vuescope/internal/core/app"
	"vuescope/internal/query"
	"vuescope/internal/shared/util"
	"vuescope/internal/ui/report"

	"github.com/spf13/cobra"
)

func (c *cli) findCommand() *cobra.Command {
	var req query.FindRequest
	var value string
	cmd := &cobra.Command{
		Use:   "find",
		Short: "List components receiving an attribute",
		Example: `  vuescope find --tag BaseButton --key size
  vuescope find --key data-test --value submit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("value") {
				req.Value = &value
			}
			if req.Tag == "" && req.Key == "" {
				return fmt.Errorf("find needs --tag, --key or both")
			}
			return c.runTask(cmd, func(ctx context.Context, svc *query.Service) (*query.Result, error) {
				return svc.Find(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&req.Tag, "tag", "", "Component name in any case style")
	cmd.Flags().StringVar(&req.Key, "key", "", "Attribute key, kebab or camel case")
	cmd.Flags().StringVar(&value, "value", "", "Required attribute value")
	return cmd
}

// fixFlags are shared by the tasks that can rewrite files.
type fixFlags struct {
	fix    bool
	dryRun bool
}

func (f *fixFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.fix, "fix", false, "Rewrite the offending files")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "With --fix, print a diff instead of writing")
}

func (f *fixFlags) options() []query.Option {
	if f.dryRun {
		return []query.Option{query.WithDryRun()}
	}
	return nil
}

func (c *cli) clickNativeCommand() *cobra.Command {
	var flags fixFlags
	cmd := &cobra.Command{
		Use:   query.TaskClickNative,
		Short: "Find .native modifiers on component listeners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTask(cmd, func(ctx context.Context, svc *query.Service) (*query.Result, error) {
				return svc.ClickNative(ctx, flags.fix)
			}, flags.options()...)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *cli) missingEmitsCommand() *cobra.Command {
	var flags fixFlags
	cmd := &cobra.Command{
		Use:   query.TaskMissingEmits,
		Short: "Find emitted events missing from the emits option",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTask(cmd, func(ctx context.Context, svc *query.Service) (*query.Result, error) {
				return svc.MissingEmits(ctx, flags.fix)
			}, flags.options()...)
		},
	}
	flags.register(cmd)
	return cmd
}

// method adapts a Service method expression to a taskFunc.
func method(fn func(*query.Service, context.Context) (*query.Result, error)) taskFunc {
	return func(ctx context.Context, svc *query.Service) (*query.Result, error) {
		return fn(svc, ctx)
	}
}

// reportTasks are the tasks that take no arguments and never write.
var reportTasks = map[string]struct {
	short string
	run   taskFunc
}{
	query.TaskNonPropBindings: {"Find attributes passed to components that do not declare them as props", method((*query.Service).NonPropBindings)},
	query.TaskRouterLinkAttrs: {"Find <router-link> attributes removed in Vue Router 4", method((*query.Service).RouterLinkAttrs)},
	query.TaskTemplateVFor:    {"Find <template v-for> elements", method((*query.Service).TemplateVFor)},
	query.TaskTeleportTargets: {"List distinct <teleport to> targets", method((*query.Service).TeleportTargets)},
}

func (c *cli) reportCommand(task string) *cobra.Command {
	t := reportTasks[task]
	return &cobra.Command{
		Use:   task,
		Short: t.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTask(cmd, t.run)
		},
	}
}

func (c *cli) nonPropBindingsCommand() *cobra.Command {
	return c.reportCommand(query.TaskNonPropBindings)
}

func (c *cli) routerLinkAttrsCommand() *cobra.Command {
	return c.reportCommand(query.TaskRouterLinkAttrs)
}

func (c *cli) templateVForCommand() *cobra.Command {
	return c.reportCommand(query.TaskTemplateVFor)
}

func (c *cli) teleportTargetsCommand() *cobra.Command {
	return c.reportCommand(query.TaskTeleportTargets)
}

func (c *cli) graphCommand() *cobra.Command {
	var diagram, inject, marker string
	cmd := &cobra.Command{
		Use:   query.TaskComponentGraph,
		Short: "Print the component graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inject != "" {
				diagram = "mermaid"
			}
			switch diagram {
			case "":
				return c.runTask(cmd, method((*query.Service).Graph))
			case "dot", "mermaid":
			default:
				return fmt.Errorf("unknown diagram %q", diagram)
			}
			return c.runTaskWith(cmd, method((*query.Service).Graph), func(a *app.App, res *query.Result) error {
				g := report.NewGraph(res.Findings, displayName(a), dependencyFilter(a))
				out := report.DOT(g)
				if diagram == "mermaid" {
					out = report.Mermaid(g)
				}
				if inject != "" {
					return report.InjectDiagram(inject, marker, out)
				}
				_, err := io.WriteString(c.out, out)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&diagram, "diagram", "", "Render as a diagram: dot or mermaid")
	cmd.Flags().StringVar(&inject, "inject", "", "Write a mermaid diagram between the markers of this markdown file")
	cmd.Flags().StringVar(&marker, "marker", "components", "Marker name used with --inject")
	return cmd
}

// dependencyFilter marks paths inside the dependency directory.
func dependencyFilter(a *app.App) func(string) bool {
	dir := a.Paths.DependencyDir
	return func(path string) bool {
		return util.HasPathPrefix(path, dir)
	}
}

func (c *cli) watchCommand() *cobra.Command {
	var task string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run a report task whenever component files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, ok := reportTasks[task]
			if !ok && task != query.TaskComponentGraph {
				return fmt.Errorf("watch supports %s", strings.Join(watchableTasks(), ", "))
			}
			run := t.run
			if !ok {
				run = method((*query.Service).Graph)
			}
			return c.watch(cmd, run)
		},
	}
	cmd.Flags().StringVar(&task, "task", query.TaskNonPropBindings, "Task to re-run: "+strings.Join(watchableTasks(), ", "))
	return cmd
}

func watchableTasks() []string {
	names := append(util.SortedStringKeys(reportTasks), query.TaskComponentGraph)
	sort.Strings(names)
	return names
}

// watch runs task once, then again after every batch of changes, reusing
// the warm component cache of a single run.
func (c *cli) watch(cmd *cobra.Command, task taskFunc) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer s.close(context.Background())

	svc := query.NewService(s.app)
	rerun := func() {
		res, err := task(ctx, svc)
		if err != nil {
			s.app.Logger().Error("task failed", "error", err)
			return
		}
		if err := c.print(s.app, res); err != nil {
			s.app.Logger().Error("print failed", "error", err)
		}
	}
	rerun()

	changes := make(chan []string, 1)
	go func() {
		for paths := range changes {
			name := displayName(s.app)
			names := make([]string, len(paths))
			for i, p := range paths {
				names[i] = name(p)
			}
			s.app.Logger().Info("files changed", "paths", names)
			rerun()
		}
	}()
	defer close(changes)

	return s.app.Watch(ctx, func(paths []string) {
		select {
		case changes <- paths:
		default:
			// A rerun is already queued and will see the new content.
		}
	})
}
