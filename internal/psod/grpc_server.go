package psod

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

// SwarmGRPCServer implements SwarmServiceServer using a RunStore backend.
type SwarmGRPCServer struct {
	store    *RunStore
	Executor *RunExecutor
}

// NewSwarmGRPCServer creates a new SwarmGRPCServer with the provided RunStore and RunExecutor.
func NewSwarmGRPCServer(store *RunStore, executor *RunExecutor) *SwarmGRPCServer {
	return &SwarmGRPCServer{
		store:    store,
		Executor: executor,
	}
}

func (s *SwarmGRPCServer) CreateRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "params are required")
	}

	var (
		params *config.Params
		err    error
	)
	fields := req.GetFields()
	switch {
	case fields["params_yaml"].GetStringValue() != "":
		params, err = config.ParseParamsYAML([]byte(fields["params_yaml"].GetStringValue()))
	case fields["params"].GetStructValue() != nil:
		var raw []byte
		raw, err = json.Marshal(fields["params"].GetStructValue().AsMap())
		if err == nil {
			params, err = config.ParseParamsJSON(raw)
		}
	default:
		return nil, status.Error(codes.InvalidArgument, "params or params_yaml is required")
	}
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	rec, err := s.store.Create(stringField(req, "run_id"), params)
	if err != nil {
		switch {
		case errors.Is(err, ErrRunExists):
			return nil, status.Error(codes.AlreadyExists, err.Error())
		case errors.Is(err, ErrInvalidRunID):
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	logger.Info("run created", "run_id", rec.Run.ID)
	return toStruct(map[string]any{"run": rec.Run, "params": rec.Params})
}

func (s *SwarmGRPCServer) StartRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	runID := stringField(req, "run_id")
	if runID == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}

	updated, err := s.Executor.Start(runID)
	if err != nil {
		return nil, runStatusError(err)
	}
	logger.Info("run started (executor)", "run_id", runID)
	return toStruct(map[string]any{"run": updated.Run})
}

func (s *SwarmGRPCServer) StopRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	runID := stringField(req, "run_id")
	if runID == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}

	updated, err := s.Executor.Stop(runID)
	if err != nil {
		return nil, runStatusError(err)
	}
	logger.Info("run cancelled", "run_id", runID)
	return toStruct(map[string]any{"run": updated.Run})
}

func (s *SwarmGRPCServer) GetRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	runID := stringField(req, "run_id")
	if runID == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}
	rec, ok := s.store.Get(runID)
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	return toStruct(map[string]any{"run": rec.Run, "params": rec.Params})
}

func (s *SwarmGRPCServer) ListRuns(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit, offset := 50, 0
	if v := int(numberField(req, "limit")); v > 0 {
		limit = v
	}
	if v := int(numberField(req, "offset")); v > 0 {
		offset = v
	}
	recs := s.store.List(limit, offset, models.RunStatus(stringField(req, "status")))
	runs := make([]*models.Run, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, rec.Run)
	}
	return toStruct(map[string]any{"runs": runs})
}

func runStatusError(err error) error {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrRunTerminal):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrRunIDMissing):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func numberField(s *structpb.Struct, name string) float64 {
	return s.GetFields()[name].GetNumberValue()
}

// toStruct converts a JSON-encodable value into a Struct using the JSON
// field names of the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
