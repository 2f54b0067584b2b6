package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"xsmodels/xspec"
)

type settingsView struct {
	Version      string            `json:"version"`
	Chatter      int               `json:"chatter"`
	Abundance    string            `json:"abundance"`
	CrossSection string            `json:"cross_section"`
	Cosmology    xspec.Cosmology   `json:"cosmology"`
	ModelStrings map[string]string `json:"model_strings"`
}

func readSettings(s *xspec.Session) (settingsView, error) {
	var v settingsView
	var err error
	if v.Version, err = s.Version(); err != nil {
		return v, err
	}
	if v.Chatter, err = s.Chatter(); err != nil {
		return v, err
	}
	if v.Abundance, err = s.Abundance(); err != nil {
		return v, err
	}
	if v.CrossSection, err = s.CrossSection(); err != nil {
		return v, err
	}
	if v.Cosmology, err = s.Cosmology(); err != nil {
		return v, err
	}
	v.ModelStrings, err = s.ModelStrings()
	return v, err
}

func (a *app) settingsCmd() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change the library settings",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return a.withRuntime(ctx, func(rt *runtime) error {
				v, err := readSettings(rt.session)
				if err != nil {
					return err
				}
				return a.emit(v, func(w io.Writer) {
					fmt.Fprintf(w, "version        %s\n", v.Version)
					fmt.Fprintf(w, "chatter        %d\n", v.Chatter)
					fmt.Fprintf(w, "abundance      %s\n", v.Abundance)
					fmt.Fprintf(w, "cross section  %s\n", v.CrossSection)
					fmt.Fprintf(w, "cosmology      H0=%g q0=%g lambda0=%g\n", v.Cosmology.H0, v.Cosmology.Q0, v.Cosmology.Lambda0)
					for _, k := range slices.Sorted(maps.Keys(v.ModelStrings)) {
						fmt.Fprintf(w, "mstring        %s=%s\n", k, v.ModelStrings[k])
					}
				})
			})
		},
		Commands: []*cli.Command{
			a.settingsGetCmd(),
			a.settingsSetCmd(),
			a.settingsClearCmd(),
		},
	}
}

func (a *app) settingsGetCmd() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read a keyword, model string or XFLT entry",
		ArgsUsage: "keyword NAME | mstring NAME | xflt SPECTRUM [KEY]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) < 2 {
				return usagef("settings get needs a kind and a name")
			}
			return a.withRuntime(ctx, func(rt *runtime) error {
				s := rt.session
				switch args[0] {
				case "keyword":
					v, err := s.Keyword(args[1])
					if err != nil {
						return err
					}
					return a.emit(v, func(w io.Writer) { fmt.Fprintln(w, v) })
				case "mstring":
					v, err := s.ModelString(args[1])
					if err != nil {
						return err
					}
					return a.emit(v, func(w io.Writer) { fmt.Fprintln(w, v) })
				case "xflt":
					spec, err := strconv.Atoi(args[1])
					if err != nil {
						return usagef("xflt spectrum %q is not a number", args[1])
					}
					if len(args) > 2 {
						v, err := s.XFLTValue(spec, args[2])
						if err != nil {
							return err
						}
						return a.emit(v, func(w io.Writer) { fmt.Fprintln(w, v) })
					}
					m, err := s.XFLT(spec)
					if err != nil {
						return err
					}
					return a.emit(m, func(w io.Writer) {
						for _, k := range slices.Sorted(maps.Keys(m)) {
							fmt.Fprintf(w, "%s=%g\n", k, m[k])
						}
					})
				}
				return usagef("unknown setting kind %q", args[0])
			})
		},
	}
}

func (a *app) settingsSetCmd() *cli.Command {
	return &cli.Command{
		Name:  "set",
		Usage: "Change a setting",
		ArgsUsage: "chatter N | abundance TABLE | xsect TABLE | cosmo H0,Q0,L0 | " +
			"keyword NAME VALUE | mstring NAME VALUE | xflt SPECTRUM KEY=VALUE...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) < 2 {
				return usagef("settings set needs a name and a value")
			}
			return a.withRuntime(ctx, func(rt *runtime) error {
				return applySetting(rt.session, args)
			})
		},
	}
}

func applySetting(s *xspec.Session, args []string) error {
	kind, val := args[0], args[1]
	switch kind {
	case "chatter":
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			return usagef("chatter must be a non-negative integer")
		}
		return s.SetChatter(n)
	case "abundance", "abund":
		return s.SetAbundance(val)
	case "xsect", "cross-section":
		return s.SetCrossSection(val)
	case "cosmo", "cosmology":
		v, err := parseFloats("cosmo", val)
		if err != nil {
			return err
		}
		if len(v) != 3 {
			return usagef("cosmo takes H0,q0,lambda0")
		}
		return s.SetCosmology(xspec.Cosmology{H0: v[0], Q0: v[1], Lambda0: v[2]})
	case "keyword":
		if len(args) != 3 {
			return usagef("keyword takes a name and a value")
		}
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return usagef("keyword value %q is not a number", args[2])
		}
		return s.SetKeyword(val, v)
	case "mstring":
		if len(args) != 3 {
			return usagef("mstring takes a name and a value")
		}
		return s.SetModelString(val, args[2])
	case "xflt":
		spec, err := strconv.Atoi(val)
		if err != nil || spec < 1 {
			return usagef("xflt spectrum must be a positive integer")
		}
		values := make(map[string]float64, len(args)-2)
		for _, kv := range args[2:] {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return usagef("xflt entries are KEY=VALUE, got %q", kv)
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return usagef("xflt %s: %q is not a number", k, v)
			}
			values[k] = f
		}
		return s.SetXFLT(spec, values)
	}
	return usagef("unknown setting %q", kind)
}

func (a *app) settingsClearCmd() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "Remove all keywords, model strings or XFLT entries",
		ArgsUsage: "keywords | mstrings | xflt",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			kind := cmd.Args().First()
			return a.withRuntime(ctx, func(rt *runtime) error {
				switch kind {
				case "keywords":
					return rt.session.ClearKeywords()
				case "mstrings":
					return rt.session.ClearModelStrings()
				case "xflt":
					return rt.session.ClearXFLT()
				}
				return usagef("unknown setting kind %q", kind)
			})
		},
	}
}
