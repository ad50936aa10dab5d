package app

import (
	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/neuralsense/fusion/internal/core/ports"
	"github.com/neuralsense/fusion/internal/core/services/uploader"
)

// fanoutSink writes every event to the durable local sink and, for zone
// assignments, also hands a copy to the upload sidecar so the remote
// store gets a best-effort mirror without blocking the fusion pipeline.
type fanoutSink struct {
	local    ports.EventSink
	uploader *uploader.Uploader
}

func newFanoutSink(local ports.EventSink, u *uploader.Uploader) *fanoutSink {
	return &fanoutSink{local: local, uploader: u}
}

func (f *fanoutSink) WriteAssignment(a domain.ZoneAssignment) error {
	if err := f.local.WriteAssignment(a); err != nil {
		return err
	}
	f.uploader.Enqueue(a)
	return nil
}

func (f *fanoutSink) WriteUncertain(u domain.Uncertain) error {
	return f.local.WriteUncertain(u)
}

func (f *fanoutSink) WriteTransition(t domain.Transition) error {
	return f.local.WriteTransition(t)
}

func (f *fanoutSink) WriteDwell(d domain.Dwell) error {
	return f.local.WriteDwell(d)
}

func (f *fanoutSink) WriteError(e domain.ErrorRecord) error {
	return f.local.WriteError(e)
}

func (f *fanoutSink) WriteFailedUpload(u domain.FailedUpload) error {
	return f.local.WriteFailedUpload(u)
}

func (f *fanoutSink) Close() error {
	return f.local.Close()
}
