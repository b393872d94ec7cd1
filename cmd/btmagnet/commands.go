package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/burmudar/bt-magnet/pkg/bt/config"
	"github.com/burmudar/bt-magnet/pkg/bt/encoding"
	"github.com/burmudar/bt-magnet/pkg/bt/infohash"
	"github.com/burmudar/bt-magnet/pkg/bt/magnet"
	"github.com/burmudar/bt-magnet/pkg/bt/manager"
	"github.com/burmudar/bt-magnet/pkg/bt/types"
)

func newDecodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <bencoded value>",
		Short: "Decode a bencoded value and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := encoding.Decode([]byte(args[0]), encoding.WithMaxDepth(a.cfg.MaxDepth))
			if err != nil {
				return fmt.Errorf("decoding failure: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), encoding.Native(v))
		},
	}
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <torrent file or url>",
		Short: "Print the metadata of a torrent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := a.fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			v, err := encoding.Decode(raw, encoding.WithMaxDepth(a.cfg.MaxDepth))
			if err != nil {
				return err
			}
			torrent, err := types.FromValue(v)
			if err != nil {
				return err
			}
			if n := torrent.NumPieces(); n != len(torrent.PieceHashes) {
				a.log.WithFields(logrus.Fields{
					"source":   args[0],
					"expected": n,
					"found":    len(torrent.PieceHashes),
				}).Warn("piece hashes do not cover the content length")
			}
			if a.cfg.RawInfoHash {
				if torrent.Hash, err = infohash.ComputeRaw(raw, encoding.WithMaxDepth(a.cfg.MaxDepth)); err != nil {
					return err
				}
			}
			return a.writeInfo(cmd.OutOrStdout(), torrent, magnet.Trackers(v.(encoding.Dict)))
		},
	}
}

func newHashCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hash <torrent file or url>",
		Short: "Print the info hash of a torrent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := a.fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			link, err := magnet.Generate(raw, a.magnetOptions()...)
			if err != nil {
				return err
			}
			if a.cfg.Output == config.OutputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"infohash": link.InfoHash.HexString()})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), link.InfoHash.HexString())
			return err
		},
	}
}

func newMagnetCmd(a *app) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "magnet <torrent file or url>...",
		Short: "Print a magnet link for every torrent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := a.fetcher()
			defer f.Close()

			m := manager.New(f,
				manager.WithConcurrency(a.cfg.Concurrency),
				manager.WithLogger(a.log),
				manager.WithMagnetOptions(a.magnetOptions()...),
			)

			results, genErr := m.Generate(cmd.Context(), args)
			for _, r := range results {
				uri := r.Link.String()
				if verify {
					if _, err := magnet.Parse(uri); err != nil {
						return fmt.Errorf("generated link for %s does not parse: %w", r.Source, err)
					}
				}
				if err := a.writeLink(cmd.OutOrStdout(), r, uri); err != nil {
					return err
				}
			}

			if genErr != nil {
				return fmt.Errorf("failed to generate magnet links: %w", genErr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "parse every generated link back before printing it")

	return cmd
}

func (a *app) fetch(ctx context.Context, source string) ([]byte, error) {
	f := a.fetcher()
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	a.log.WithField("source", source).Debug("fetching torrent")
	return f.Fetch(ctx, source)
}

type linkOutput struct {
	Source   string   `json:"source"`
	InfoHash string   `json:"infohash"`
	Name     string   `json:"name,omitempty"`
	Trackers []string `json:"trackers"`
	Magnet   string   `json:"magnet"`
}

func (a *app) writeLink(w io.Writer, r *manager.Result, uri string) error {
	if a.cfg.Output == config.OutputJSON {
		return writeJSON(w, linkOutput{
			Source:   r.Source,
			InfoHash: r.Link.InfoHash.HexString(),
			Name:     r.Link.Name,
			Trackers: r.Link.Trackers,
			Magnet:   uri,
		})
	}
	_, err := fmt.Fprintln(w, uri)
	return err
}

type infoOutput struct {
	Name         string   `json:"name"`
	Announce     string   `json:"announce,omitempty"`
	Trackers     []string `json:"trackers"`
	Length       int      `json:"length"`
	PieceLength  int      `json:"piece_length"`
	Pieces       int      `json:"pieces"`
	Files        []string `json:"files,omitempty"`
	InfoHash     string   `json:"infohash"`
	Comment      string   `json:"comment,omitempty"`
	CreatedBy    string   `json:"created_by,omitempty"`
	CreationDate string   `json:"creation_date,omitempty"`
	Private      bool     `json:"private"`
}

func (a *app) writeInfo(w io.Writer, t *types.Torrent, trackers []string) error {
	out := infoOutput{
		Name:        t.Name,
		Announce:    t.Announce,
		Trackers:    trackers,
		Length:      t.TotalLength(),
		PieceLength: t.PieceLength,
		Pieces:      len(t.PieceHashes),
		InfoHash:    t.Hash.HexString(),
		Comment:     t.Comment,
		CreatedBy:   t.CreatedBy,
		Private:     t.Private,
	}
	for _, f := range t.Files {
		out.Files = append(out.Files, f.Path())
	}
	if !t.CreationDate.IsZero() {
		out.CreationDate = t.CreationDate.Format(time.RFC3339)
	}

	if a.cfg.Output == config.OutputJSON {
		return writeJSON(w, out)
	}

	fmt.Fprintf(w, "Name: %s\n", out.Name)
	fmt.Fprintf(w, "Tracker URL: %s\n", out.Announce)
	for _, tr := range out.Trackers {
		fmt.Fprintf(w, "Tracker: %s\n", tr)
	}
	fmt.Fprintf(w, "Length: %d\n", out.Length)
	fmt.Fprintf(w, "Info Hash: %s\n", out.InfoHash)
	fmt.Fprintf(w, "Piece Length: %d\n", out.PieceLength)
	fmt.Fprintf(w, "Pieces: %d\n", out.Pieces)
	for _, f := range out.Files {
		fmt.Fprintf(w, "File: %s\n", f)
	}
	if out.Comment != "" {
		fmt.Fprintf(w, "Comment: %s\n", out.Comment)
	}
	if out.CreatedBy != "" {
		fmt.Fprintf(w, "Created By: %s\n", out.CreatedBy)
	}
	if out.CreationDate != "" {
		fmt.Fprintf(w, "Creation Date: %s\n", out.CreationDate)
	}
	_, err := fmt.Fprintf(w, "Private: %v\n", out.Private)
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
