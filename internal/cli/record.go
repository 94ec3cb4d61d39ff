package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/rtgscope/internal/adapters/eln"
	"github.com/emiliopalmerini/rtgscope/internal/config"
	"github.com/emiliopalmerini/rtgscope/internal/domain"
	"github.com/emiliopalmerini/rtgscope/internal/logger"
	"github.com/emiliopalmerini/rtgscope/internal/ports"
	"github.com/emiliopalmerini/rtgscope/internal/util"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Register a microscopy acquisition",
	Long: `Store a new experiment in the experiments database.

With --eln an entry is first created in the electronic lab notebook
(RTGSCOPE_ELN_URL) and its id is stored with the experiment.

Examples:
  rtgscope record --microscope LSM980 --objective 63x --channel DAPI --channel GFP
  rtgscope record --microscope LSM980 --objective 40x --channel DAPI \
    --filename slide_01.czi --na 1.3 --pixel-xy 0.1 --eln`,
	RunE: runRecord,
}

type recordInput struct {
	Microscope        string
	Objective         string
	Channels          []string
	User              string
	Filename          string
	RawPath           string
	NumericalAperture float64
	PixelSizeXY       float64
	PixelSizeZ        float64
	CreateELNEntry    bool
}

var recordFlags recordInput

func init() {
	f := recordCmd.Flags()
	f.StringVar(&recordFlags.Microscope, "microscope", "", "Microscope name")
	f.StringVar(&recordFlags.Objective, "objective", "", "Objective used for the acquisition")
	f.StringSliceVar(&recordFlags.Channels, "channel", nil, "Acquired channel (repeatable)")
	f.StringVar(&recordFlags.User, "user", "", "Operator (defaults to $USER)")
	f.StringVar(&recordFlags.Filename, "filename", "", "Acquisition file name")
	f.StringVar(&recordFlags.RawPath, "raw-path", "", "Location of the raw data")
	f.Float64Var(&recordFlags.NumericalAperture, "na", 0, "Objective numerical aperture")
	f.Float64Var(&recordFlags.PixelSizeXY, "pixel-xy", 0, "Lateral pixel size in µm")
	f.Float64Var(&recordFlags.PixelSizeZ, "pixel-z", 0, "Axial step in µm")
	f.BoolVar(&recordFlags.CreateELNEntry, "eln", false, "Create an ELN entry for the acquisition")
	_ = recordCmd.MarkFlagRequired("microscope")
	_ = recordCmd.MarkFlagRequired("objective")
}

func runRecord(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadRecorder()
	if err != nil {
		return err
	}
	lggr, err := logger.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = lggr.Sync() }()

	in := recordFlags
	if in.User == "" {
		in.User = os.Getenv("USER")
	}

	var notebook ports.ELNClient = eln.NewNoOpClient()
	if in.CreateELNEntry {
		client, err := eln.NewClient(cfg.ELN)
		if err != nil {
			return err
		}
		notebook = client
	}

	app, err := NewAppContext(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer app.Close()

	exp, err := recordExperiment(ctx, app.Repos.Experiments, notebook, in, time.Now())
	if err != nil {
		return err
	}
	lggr.Debugw("experiment recorded", "id", exp.ID, "eln_id", exp.ELNID)

	printExperiment(cmd.OutOrStdout(), exp)
	return nil
}

// recordExperiment creates the ELN entry, if any, then stores the experiment.
func recordExperiment(ctx context.Context, repo ports.ExperimentRepository, notebook ports.ELNClient, in recordInput, now time.Time) (*domain.Experiment, error) {
	if strings.TrimSpace(in.Microscope) == "" {
		return nil, fmt.Errorf("microscope is required")
	}
	if strings.TrimSpace(in.Objective) == "" {
		return nil, fmt.Errorf("objective is required")
	}

	channels := make([]string, 0, len(in.Channels))
	for _, c := range in.Channels {
		if c = strings.TrimSpace(c); c != "" {
			channels = append(channels, c)
		}
	}

	exp := &domain.Experiment{
		ID:                uuid.New().String(),
		AcquisitionDate:   now.UTC(),
		UserID:            in.User,
		Microscope:        in.Microscope,
		Objective:         in.Objective,
		NumericalAperture: util.PositiveFloat64Ptr(in.NumericalAperture),
		PixelSizeXY:       util.PositiveFloat64Ptr(in.PixelSizeXY),
		PixelSizeZ:        util.PositiveFloat64Ptr(in.PixelSizeZ),
		Channels:          channels,
		RawPath:           in.RawPath,
		CreatedAt:         now.UTC(),
	}

	elnID, err := notebook.CreateEntry(ctx, ports.ELNEntry{
		Filename:   in.Filename,
		User:       exp.UserID,
		Microscope: exp.Microscope,
		Metadata:   elnMetadata(exp),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ELN entry: %w", err)
	}
	exp.ELNID = elnID

	if err := repo.Create(ctx, exp); err != nil {
		return nil, fmt.Errorf("failed to save experiment: %w", err)
	}
	return exp, nil
}

func elnMetadata(exp *domain.Experiment) map[string]any {
	m := map[string]any{
		"objective":        exp.Objective,
		"channels":         exp.Channels,
		"acquisition_date": exp.AcquisitionDate.Format(time.RFC3339),
	}
	if exp.NumericalAperture != nil {
		m["numerical_aperture"] = *exp.NumericalAperture
	}
	if exp.PixelSizeXY != nil {
		m["pixel_size_xy"] = *exp.PixelSizeXY
	}
	if exp.PixelSizeZ != nil {
		m["pixel_size_z"] = *exp.PixelSizeZ
	}
	if exp.RawPath != "" {
		m["raw_path"] = exp.RawPath
	}
	return m
}

func printExperiment(w io.Writer, exp *domain.Experiment) {
	fmt.Fprintf(w, "Recorded experiment %s\n", exp.ID)
	fmt.Fprintf(w, "  Microscope: %s\n", exp.Microscope)
	fmt.Fprintf(w, "  Objective:  %s\n", exp.Objective)
	fmt.Fprintf(w, "  Channels:   %s\n", strings.Join(exp.Channels, domain.ChannelSeparator))
	if exp.ELNID != "" {
		fmt.Fprintf(w, "  ELN entry:  %s\n", exp.ELNID)
	}
}
