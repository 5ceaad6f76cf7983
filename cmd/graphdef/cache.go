package main

import (
	"context"
	"fmt"
	"text/tabwriter"
)

func cacheCmd(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: graphdef cache stats|clear|cleanup")
	}
	g, err := e.open()
	if err != nil {
		return err
	}
	switch args[0] {
	case "stats":
		stats, err := g.CacheStats(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIER\tENTRIES\tBYTES")
		fmt.Fprintf(tw, "ast\t%d\t%d\n", stats.AST.Entries, stats.AST.Bytes)
		fmt.Fprintf(tw, "model\t%d\t%d\n", stats.Model.Entries, stats.Model.Bytes)
		return tw.Flush()
	case "clear":
		if err := g.ClearCache(ctx); err != nil {
			return err
		}
		fmt.Fprintln(e.stdout, "cache cleared")
		return nil
	case "cleanup":
		removed, err := g.CleanupCache(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "removed %d ast and %d model entries\n", removed.AST, removed.Model)
		return nil
	default:
		return fmt.Errorf("unknown cache command %q", args[0])
	}
}
