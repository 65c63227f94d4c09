// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/ik5/audplay"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/player"
	"github.com/ik5/audplay/store"
	"github.com/spf13/cobra"
)

type AddParams struct {
	Store  string `short:"s" help:"Store directory." default:"audplay-store"`
	ID     string `help:"Library id; defaults to the file name." default:""`
	Title  string `short:"t" help:"Display title." default:""`
	Artist string `short:"a" help:"Display artist." default:""`
	Album  string `help:"Display album." default:""`
	File   string `pos:"true" required:"true" help:"Audio file to add."`
}

func AddCmd() *cobra.Command {
	return boa.CmdT[AddParams]{
		Use:         "add",
		Short:       "Add an audio file to the library",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *AddParams, cmd *cobra.Command, args []string) {
			st, err := openStore(params.Store)
			exitOn("add", err)

			m, err := addMedia(cmd.Context(), st, audplay.NewRegistry(), params)
			exitOn("add", err)
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", m.ID, clockTime(m.DurationMs), m.Path)
		},
	}.ToCobra()
}

// addMedia probes the file once for its duration and writes the library
// record. The file is not kept open.
func addMedia(ctx context.Context, st store.Store, r *audio.Registry, params *AddParams) (player.Media, error) {
	path, err := filepath.Abs(params.File)
	if err != nil {
		return player.Media{}, err
	}

	dec, ok := r.Lookup(path)
	if !ok {
		return player.Media{}, fmt.Errorf("%w: %s", audio.ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return player.Media{}, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return player.Media{}, err
	}
	defer src.Close()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := player.Media{
		ID:     params.ID,
		Path:   path,
		Title:  params.Title,
		Artist: params.Artist,
		Album:  params.Album,
	}
	if m.ID == "" {
		m.ID = mediaID(base)
	}
	if m.Title == "" {
		m.Title = base
	}
	if l, ok := src.(audio.Lengther); ok && l.Frames() > 0 {
		m.DurationMs = audio.DurationMs(l.Frames(), src.SampleRate())
	}

	if _, err := st.Put(ctxOrBackground(ctx), store.LibraryPath(m.ID), m); err != nil {
		return player.Media{}, err
	}
	return m, nil
}

// mediaID lower-cases name and replaces anything outside [a-z0-9_-] so the
// id is a single store path segment.
func mediaID(name string) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, name)

	id = strings.Trim(id, "-")
	if id == "" {
		return "track"
	}
	return id
}
