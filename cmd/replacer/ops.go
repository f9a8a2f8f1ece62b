package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orneryd/replacer/pkg/replace"
	"github.com/orneryd/replacer/pkg/storage"
	"github.com/orneryd/replacer/pkg/vector"
)

var (
	errNameAndArgs  = errors.New("use either --name or positional values, not both")
	errTwoStencils  = errors.New("use either --stencil or --stencil-name, not both")
	errIntoAndCount = errors.New("--count discards the result; it cannot be combined with --into")
)

// opFlags collects the flags shared by the replace commands.
type opFlags struct {
	name        string
	into        string
	count       bool
	stencil     []float64
	stencilName string
	op          string
	than        float64
	oldValue    float64
	newValue    float64
}

func (f *opFlags) bindSource(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Read the sequence from the store instead of arguments")
	cmd.Flags().Float64Var(&f.newValue, "new", 0, "Replacement value")
}

func (f *opFlags) bindOld(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.oldValue, "old", 0, "Value to replace")
	_ = cmd.MarkFlagRequired("old")
}

func (f *opFlags) bindPredicate(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.op, "op", "lt", "Comparison: lt, le, gt, ge, eq, ne")
	cmd.Flags().Float64Var(&f.than, "than", 0, "Right-hand side of the comparison")
	cmd.Flags().Float64SliceVar(&f.stencil, "stencil", nil, "Stencil values the predicate is evaluated on")
	cmd.Flags().StringVar(&f.stencilName, "stencil-name", "", "Stored sequence to use as the stencil")
}

func (f *opFlags) bindCopy(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.into, "into", "", "Store the result under this name")
	cmd.Flags().BoolVar(&f.count, "count", false, "Write into a discard sink and print only the number of positions processed")
}

// seqVec is a sequence usable both as input and destination.
type seqVec interface {
	vector.Mutable[float64]
	Cap() int
}

// place puts values where the configured backend wants them: on the
// accelerator for the gpu backend, in host memory otherwise. The returned
// function reads the values back.
func (a *app) place(values []float64) (seqVec, func() []float64) {
	if a.accel != nil {
		d := vector.NewDevice(a.accel, values)
		return d, d.ToHost
	}
	h := vector.HostOf(values)
	return h, h.Slice
}

// options routes host data onto the configured system. Device data already
// carries the accelerator tag.
func (a *app) options() []replace.Option {
	opts := []replace.Option{replace.WithLogger(a.logger)}
	if a.accel == nil {
		opts = append(opts, replace.WithSystem(a.sys))
	}
	return opts
}

// source returns the input values from the store or the arguments.
func (a *app) source(f *opFlags, args []string) ([]float64, error) {
	if f.name == "" {
		return parseValues(args)
	}
	if len(args) > 0 {
		return nil, errNameAndArgs
	}
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	seq, err := store.Get(f.name)
	if err != nil {
		return nil, err
	}
	return seq.Values, nil
}

// stencilValues returns the stencil, or nil when none was given.
func (a *app) stencilValues(f *opFlags) ([]float64, error) {
	if f.stencilName == "" {
		return f.stencil, nil
	}
	if f.stencil != nil {
		return nil, errTwoStencils
	}
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	seq, err := store.Get(f.stencilName)
	if err != nil {
		return nil, err
	}
	return seq.Values, nil
}

// inPlaceFunc mutates data.
type inPlaceFunc func(ctx context.Context, data seqVec, opts []replace.Option) error

// runInPlace applies fn to the source. Stored sequences are rewritten in
// one store transaction.
func (a *app) runInPlace(cmd *cobra.Command, f *opFlags, args []string, fn inPlaceFunc) error {
	ctx := cmd.Context()
	apply := func(values []float64) ([]float64, error) {
		data, collect := a.place(values)
		if err := fn(ctx, data, a.options()); err != nil {
			return nil, err
		}
		return collect(), nil
	}

	if f.name == "" {
		values, err := parseValues(args)
		if err != nil {
			return err
		}
		out, err := apply(values)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatValues(out))
		return nil
	}

	if len(args) > 0 {
		return errNameAndArgs
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	var out []float64
	err = store.Update(f.name, func(seq *storage.Sequence) error {
		var err error
		out, err = apply(seq.Values)
		seq.Values = out
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatValues(out))
	return nil
}

// copyFunc writes the transformed src into dst and returns the cursor.
type copyFunc func(ctx context.Context, src vector.Range[float64], dst vector.Output[float64], opts []replace.Option) (int, error)

// runCopy applies fn from the source into a fresh destination, a discard
// sink (--count) or a stored sequence (--into).
func (a *app) runCopy(cmd *cobra.Command, f *opFlags, args []string, fn copyFunc) error {
	if f.count && f.into != "" {
		return errIntoAndCount
	}
	values, err := a.source(f, args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	src, _ := a.place(values)

	if f.count {
		n, err := fn(ctx, src, vector.Discard[float64]{}, a.options())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	}

	dst, collect := a.place(make([]float64, len(values)))
	if _, err := fn(ctx, src, dst, a.options()); err != nil {
		return err
	}
	out := collect()

	if f.into != "" {
		store, err := a.openStore()
		if err != nil {
			return err
		}
		if err := store.Put(&storage.Sequence{Name: f.into, Values: out}); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatValues(out))
	return nil
}

func newReplaceCmd(a *app) *cobra.Command {
	f := &opFlags{}
	cmd := &cobra.Command{
		Use:   "replace [values...]",
		Short: "Replace every element equal to --old with --new, in place",
		Example: `  replacer replace --old 1 --new 4 1 2 1 3 2
  replacer replace --name scores --old 1 --new 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInPlace(cmd, f, args, func(ctx context.Context, data seqVec, opts []replace.Option) error {
				return replace.Replace[float64](ctx, data, f.oldValue, f.newValue, opts...)
			})
		},
	}
	f.bindSource(cmd)
	f.bindOld(cmd)
	return cmd
}

func newReplaceCopyCmd(a *app) *cobra.Command {
	f := &opFlags{}
	cmd := &cobra.Command{
		Use:   "replace-copy [values...]",
		Short: "Copy the sequence, replacing elements equal to --old with --new",
		Example: `  replacer replace-copy --old 1 --new 4 1 2 1 3 2
  replacer replace-copy --name scores --into fixed --old 1 --new 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCopy(cmd, f, args, func(ctx context.Context, src vector.Range[float64], dst vector.Output[float64], opts []replace.Option) (int, error) {
				return replace.ReplaceCopy[float64](ctx, src, dst, f.oldValue, f.newValue, opts...)
			})
		},
	}
	f.bindSource(cmd)
	f.bindOld(cmd)
	f.bindCopy(cmd)
	return cmd
}

func newReplaceIfCmd(a *app) *cobra.Command {
	f := &opFlags{}
	cmd := &cobra.Command{
		Use:   "replace-if [values...]",
		Short: "Replace elements for which the predicate holds, in place",
		Example: `  replacer replace-if --op lt --than 5 --new 0 1 3 4 6 5
  replacer replace-if --op lt --than 5 --new 0 --stencil 5,4,6,3,7 1 3 4 6 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pred, err := parsePredicate(f.op, f.than)
			if err != nil {
				return err
			}
			stencil, err := a.stencilValues(f)
			if err != nil {
				return err
			}
			return a.runInPlace(cmd, f, args, func(ctx context.Context, data seqVec, opts []replace.Option) error {
				if stencil == nil {
					return replace.ReplaceIf[float64](ctx, data, pred, f.newValue, opts...)
				}
				st, _ := a.place(stencil)
				return replace.ReplaceIfStencil[float64, float64](ctx, data, st, pred, f.newValue, opts...)
			})
		},
	}
	f.bindSource(cmd)
	f.bindPredicate(cmd)
	return cmd
}

func newReplaceCopyIfCmd(a *app) *cobra.Command {
	f := &opFlags{}
	cmd := &cobra.Command{
		Use:   "replace-copy-if [values...]",
		Short: "Copy the sequence, replacing elements for which the predicate holds",
		Example: `  replacer replace-copy-if --op lt --than 5 --new 0 1 3 4 6 5
  replacer replace-copy-if --name scores --stencil-name mask --into low --op lt --than 5 --new 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pred, err := parsePredicate(f.op, f.than)
			if err != nil {
				return err
			}
			stencil, err := a.stencilValues(f)
			if err != nil {
				return err
			}
			return a.runCopy(cmd, f, args, func(ctx context.Context, src vector.Range[float64], dst vector.Output[float64], opts []replace.Option) (int, error) {
				if stencil == nil {
					return replace.ReplaceCopyIf[float64](ctx, src, dst, pred, f.newValue, opts...)
				}
				st, _ := a.place(stencil)
				return replace.ReplaceCopyIfStencil[float64, float64](ctx, src, st, dst, pred, f.newValue, opts...)
			})
		},
	}
	f.bindSource(cmd)
	f.bindPredicate(cmd)
	f.bindCopy(cmd)
	return cmd
}
