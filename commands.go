package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"xsmodels/api"
	"xsmodels/core"
	"xsmodels/native"
	"xsmodels/xspec"
)

func (a *app) versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			info := map[string]string{
				"version":    core.GetVersion(),
				"build_time": core.GetBuildTime(),
				"git_commit": core.GetGitCommit(),
				"backend":    native.Backend,
			}
			return a.emit(info, func(w io.Writer) {
				fmt.Fprintln(w, core.GetVersionInfo())
				fmt.Fprintf(w, "backend: %s\n", native.Backend)
			})
		},
	}
}

func (a *app) modelsCmd() *cli.Command {
	return &cli.Command{
		Name:  "models",
		Usage: "List the models compiled into the library",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Usage: "comma-separated model types: add, mul, con"},
			&cli.StringFlag{Name: "language", Usage: "comma-separated language styles, e.g. F77Style4"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var f xspec.Filter
			for _, v := range strings.Split(cmd.String("type"), ",") {
				if v = strings.TrimSpace(v); v == "" {
					continue
				}
				t, ok := native.ParseModelType(v)
				if !ok {
					return usagef("unknown model type %q", v)
				}
				f.Types = append(f.Types, t)
			}
			for _, v := range strings.Split(cmd.String("language"), ",") {
				if v = strings.TrimSpace(v); v == "" {
					continue
				}
				l, ok := native.ParseLanguageStyle(v)
				if !ok {
					return usagef("unknown language style %q", v)
				}
				f.Languages = append(f.Languages, l)
			}

			return a.withRuntime(ctx, func(rt *runtime) error {
				cat := rt.session.Catalog()
				names := cat.List(f)
				return a.emit(names, func(w io.Writer) {
					headerColor.Fprintf(w, "%-12s %-4s %-10s %s\n", "NAME", "TYPE", "LANGUAGE", "PARS")
					for _, name := range names {
						info, _ := cat.Info(name)
						nameColor.Fprintf(w, "%-12s", info.Name)
						fmt.Fprintf(w, " %-4s %-10s %d\n", info.Type, info.Language, info.NumParams())
					}
				})
			})
		},
	}
}

func (a *app) infoCmd() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Describe a model and its parameters",
		ArgsUsage: "NAME",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return usagef("info takes exactly one model name")
			}
			return a.withRuntime(ctx, func(rt *runtime) error {
				info, err := rt.session.Catalog().Info(cmd.Args().First())
				if err != nil {
					return err
				}
				return a.emit(api.NewModelDTO(info), func(w io.Writer) {
					nameColor.Fprintf(w, "%s", info.Name)
					fmt.Fprintf(w, " (%s, %s, %s)\n", info.Type, info.Language, info.FuncName)
					fmt.Fprintf(w, "energy range %g - %g keV\n", info.ELow, info.EHigh)
					headerColor.Fprintf(w, "%-10s %-8s %10s %10s %10s %10s\n", "PARAM", "UNITS", "DEFAULT", "HARD MIN", "HARD MAX", "DELTA")
					for _, p := range info.Params {
						frozen := ""
						if p.Frozen {
							frozen = " frozen"
						}
						fmt.Fprintf(w, "%-10s %-8s %10g %10g %10g %10g%s\n", p.Name, p.Units, p.Default, p.HardMin, p.HardMax, p.Delta, frozen)
					}
				})
			})
		},
	}
}

func evalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "pars", Usage: "parameter values, comma separated"},
		&cli.StringFlag{Name: "energies", Usage: "bin edges in keV, comma separated", Required: true},
		&cli.IntFlag{Name: "spectrum", Usage: "spectrum number (default from XSMODELS_SPECTRUM)"},
	}
}

type evalResult struct {
	Model    string    `json:"model"`
	Energies []float64 `json:"energies"`
	Values   []float64 `json:"values"`
}

func (a *app) evalCmd() *cli.Command {
	return &cli.Command{
		Name:      "eval",
		Usage:     "Evaluate a model on an energy grid",
		ArgsUsage: "NAME",
		Flags: append(evalFlags(),
			&cli.StringFlag{Name: "model", Usage: "input spectrum for convolution models"},
			&cli.StringFlag{Name: "init", Usage: "initialization string for C-style models"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return usagef("eval takes exactly one model name")
			}
			name := cmd.Args().First()
			pars, err := parseFloats("pars", cmd.String("pars"))
			if err != nil {
				return err
			}
			energies, err := parseFloats("energies", cmd.String("energies"))
			if err != nil {
				return err
			}
			spectrum, err := parseFloats("model", cmd.String("model"))
			if err != nil {
				return err
			}

			req := xspec.EvalRequest{
				Pars:       pars,
				Energies:   energies,
				Model:      spectrum,
				InitString: cmd.String("init"),
			}
			if cmd.IsSet("spectrum") {
				n := cmd.Int("spectrum")
				req.Spectrum = &n
			}

			return a.withRuntime(ctx, func(rt *runtime) error {
				values, err := xspec.Evaluate(rt.session, name, req)
				if err != nil {
					return err
				}
				return a.emit(evalResult{Model: name, Energies: energies, Values: values}, func(w io.Writer) {
					printBins(w, energies, values)
				})
			})
		},
	}
}

func (a *app) tableCmd() *cli.Command {
	return &cli.Command{
		Name:      "table",
		Usage:     "Evaluate a table model file",
		ArgsUsage: "PATH",
		Flags: append(evalFlags(),
			&cli.StringFlag{Name: "type", Usage: "add, mul or exp", Value: "add"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return usagef("table takes exactly one file")
			}
			path := cmd.Args().First()
			typ, err := xspec.ParseTableType(cmd.String("type"))
			if err != nil {
				return err
			}
			pars, err := parseFloats("pars", cmd.String("pars"))
			if err != nil {
				return err
			}
			energies, err := parseFloats("energies", cmd.String("energies"))
			if err != nil {
				return err
			}
			var opts []xspec.Option
			if cmd.IsSet("spectrum") {
				opts = append(opts, xspec.WithSpectrum(cmd.Int("spectrum")))
			}

			return a.withRuntime(ctx, func(rt *runtime) error {
				values, err := rt.session.TableModel(path, typ, xspec.Vec(toFloat32(pars)), xspec.Vec(toFloat32(energies)), opts...)
				if err != nil {
					return err
				}
				wide := make([]float64, len(values))
				for i, v := range values {
					wide[i] = float64(v)
				}
				return a.emit(evalResult{Model: path, Energies: energies, Values: wide}, func(w io.Writer) {
					printBins(w, energies, values)
				})
			})
		},
	}
}

type elementRow struct {
	Z         int     `json:"z"`
	Name      string  `json:"name"`
	Abundance float64 `json:"abundance"`
}

func (a *app) elementsCmd() *cli.Command {
	return &cli.Command{
		Name:      "elements",
		Usage:     "Show element abundances from the current table",
		ArgsUsage: "[SYMBOL|Z]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return a.withRuntime(ctx, func(rt *runtime) error {
				s := rt.session
				table, err := s.Abundance()
				if err != nil {
					return err
				}
				var rows []elementRow
				switch arg := cmd.Args().First(); {
				case arg == "":
					n, err := s.NumberElements()
					if err != nil {
						return err
					}
					for z := 1; z <= n; z++ {
						row, err := elementByZ(s, z)
						if err != nil {
							return err
						}
						rows = append(rows, row)
					}
				default:
					if z, err := strconv.Atoi(arg); err == nil {
						row, err := elementByZ(s, z)
						if err != nil {
							return err
						}
						rows = append(rows, row)
						break
					}
					v, err := s.ElementAbundance(arg)
					if err != nil {
						return err
					}
					rows = append(rows, elementRow{Name: arg, Abundance: v})
				}
				return a.emit(rows, func(w io.Writer) {
					headerColor.Fprintf(w, "abundance table %s\n", table)
					for _, r := range rows {
						fmt.Fprintf(w, "%3d %-3s %g\n", r.Z, r.Name, r.Abundance)
					}
				})
			})
		},
	}
}

func elementByZ(s *xspec.Session, z int) (elementRow, error) {
	name, err := s.ElementName(z)
	if err != nil {
		return elementRow{}, err
	}
	v, err := s.ElementAbundanceByZ(z)
	if err != nil {
		return elementRow{}, err
	}
	return elementRow{Z: z, Name: name, Abundance: v}, nil
}

func (a *app) checkCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Check the configuration and start the model library",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			results := core.NewConfigValidator(a.cfg).ValidateAll()

			lib := core.ValidationResult{Name: "library", Valid: true, Message: "model library initialized"}
			if err := a.withRuntime(ctx, func(rt *runtime) error { return rt.session.EnsureReady() }); err != nil {
				lib.Valid = false
				lib.Message = "model library failed to start"
				lib.Error = err
			}
			results = append(results, lib)

			failed := 0
			for _, r := range results {
				if r.Valid {
					okColor.Fprint(a.out, "ok   ")
					fmt.Fprintf(a.out, "%-22s %s\n", r.Name, r.Message)
					continue
				}
				failed++
				failColor.Fprint(a.out, "FAIL ")
				fmt.Fprintf(a.out, "%-22s %s: %v\n", r.Name, r.Message, r.Error)
			}
			if failed > 0 {
				for _, r := range results {
					if !r.Valid {
						return fmt.Errorf("%d check(s) failed: %w", failed, r.Error)
					}
				}
			}
			return nil
		},
	}
}
