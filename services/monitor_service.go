package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/camden-git/worksitebackend/media"
	"github.com/camden-git/worksitebackend/models"
	"github.com/camden-git/worksitebackend/realtime"
	"github.com/camden-git/worksitebackend/repository"
	"github.com/camden-git/worksitebackend/vision"
)

var (
	// ErrInvalidImage means the submitted bytes could not be decoded as an image
	ErrInvalidImage = errors.New("invalid image")
	// ErrNoFaceDetected means an enrollment photo contained no usable face
	ErrNoFaceDetected = errors.New("no face detected in photo")
	// ErrEncoderUnavailable means no embedding model is loaded
	ErrEncoderUnavailable = errors.New("face encoder is not available")
)

// MonitorService runs the per-frame pipeline (identity matching, person
// localization, PPE detection, safety classification) and persists its
// results.
type MonitorService struct {
	detector   *vision.FaceDetector
	encoder    *vision.FaceEncoder
	gallery    *vision.FeatureGallery
	matcher    *vision.Matcher
	localizer  *vision.PersonLocalizer
	ppe        *vision.PPEDetector
	classifier *vision.Classifier

	employeeRepo   repository.EmployeeRepositoryInterface
	attendanceRepo repository.AttendanceRepositoryInterface
	eventRepo      repository.SafetyEventRepositoryInterface

	processor *media.Processor
	hub       *realtime.Hub
}

// NewMonitorService wires the pipeline components with their repositories.
func NewMonitorService(
	detector *vision.FaceDetector,
	encoder *vision.FaceEncoder,
	gallery *vision.FeatureGallery,
	matcher *vision.Matcher,
	localizer *vision.PersonLocalizer,
	employeeRepo repository.EmployeeRepositoryInterface,
	attendanceRepo repository.AttendanceRepositoryInterface,
	eventRepo repository.SafetyEventRepositoryInterface,
	processor *media.Processor,
	hub *realtime.Hub,
) *MonitorService {
	return &MonitorService{
		detector:       detector,
		encoder:        encoder,
		gallery:        gallery,
		matcher:        matcher,
		localizer:      localizer,
		ppe:            vision.NewPPEDetector(),
		classifier:     vision.NewClassifier(),
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		eventRepo:      eventRepo,
		processor:      processor,
		hub:            hub,
	}
}

// AnalyzeFrame runs the full pipeline over one decoded frame. A pipeline
// failure degrades to the system-error assessment instead of panicking.
func (s *MonitorService) AnalyzeFrame(frame gocv.Mat) (analysis vision.FrameAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("monitor: frame analysis recovered from panic: %v", r)
			analysis.Safety = vision.SystemErrorAssessment()
		}
	}()

	analysis.Faces = s.matcher.RecognizeFaces(frame)

	persons := s.localizer.Candidates(frame, analysis.Faces)
	if len(persons) == 0 {
		analysis.Safety = s.classifier.Assess(0, false, false)
		return analysis
	}

	// PPE checks run against the strongest candidate
	region := persons[0].Box
	hasHelmet := s.ppe.DetectHelmet(frame, &region)
	hasVest := s.ppe.DetectVest(frame, &region)
	analysis.Safety = s.classifier.Assess(len(persons), hasHelmet, hasVest)
	return analysis
}

// AnalyzeFrameBytes decodes an encoded image and analyzes it. Returns
// ErrInvalidImage when the bytes cannot be decoded.
func (s *MonitorService) AnalyzeFrameBytes(data []byte) (vision.FrameAnalysis, error) {
	if len(data) == 0 {
		return vision.FrameAnalysis{}, ErrInvalidImage
	}

	frame, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil || frame.Empty() {
		if err == nil {
			frame.Close()
		}
		return vision.FrameAnalysis{}, ErrInvalidImage
	}
	defer frame.Close()

	return s.AnalyzeFrame(frame), nil
}

// RecordResults persists one frame's analysis: attendance for every
// recognized face, the safety event, and a violation snapshot when
// frameJPEG is available. Store failures are collected and reported but
// do not undo the parts that succeeded.
func (s *MonitorService) RecordResults(analysis vision.FrameAnalysis, frameJPEG []byte) error {
	var errs []error

	eventEmployee := models.SystemEmployeeID
	for _, face := range analysis.Faces {
		if !face.Recognized() {
			continue
		}
		if eventEmployee == models.SystemEmployeeID {
			eventEmployee = face.EmployeeID
		}
		if _, err := s.attendanceRepo.RecordPresence(face.EmployeeID, face.Timestamp, face.Confidence); err != nil {
			errs = append(errs, fmt.Errorf("attendance for %s: %w", face.EmployeeID, err))
		}
	}

	var snapshotPath *string
	if len(analysis.Safety.Violations) > 0 && len(frameJPEG) > 0 && s.processor != nil {
		path, err := s.processor.SaveSnapshot(frameJPEG, analysis.Safety.Timestamp)
		if err != nil {
			errs = append(errs, fmt.Errorf("snapshot: %w", err))
		} else {
			snapshotPath = &path
		}
	}

	event := &models.SafetyEvent{
		EmployeeID:      eventEmployee,
		Status:          analysis.Safety.Status,
		Violations:      analysis.Safety.Violations,
		SafetyScore:     analysis.Safety.SafetyScore,
		PersonsDetected: analysis.Safety.PersonsDetected,
		HasHelmet:       analysis.Safety.HasHelmet,
		HasVest:         analysis.Safety.HasVest,
		Timestamp:       analysis.Safety.Timestamp.Unix(),
	}
	alert, err := s.eventRepo.Record(event, snapshotPath)
	if err != nil {
		errs = append(errs, fmt.Errorf("safety event: %w", err))
	}

	if alert != nil && s.hub != nil {
		s.hub.Broadcast(realtime.Event{
			Type: realtime.EventTypeAlert,
			Extra: map[string]interface{}{
				"alert_id":    alert.ID,
				"employee_id": alert.EmployeeID,
				"message":     alert.Message,
				"priority":    alert.Priority,
			},
			Timestamp: time.Now().Unix(),
		})
	}

	return errors.Join(errs...)
}

// ProcessFrame analyzes a frame, broadcasts the result, and persists it.
func (s *MonitorService) ProcessFrame(frame gocv.Mat, frameJPEG []byte) (vision.FrameAnalysis, error) {
	analysis := s.AnalyzeFrame(frame)
	if s.hub != nil {
		s.hub.BroadcastAnalysis(analysis)
	}
	return analysis, s.RecordResults(analysis, frameJPEG)
}

// Enroll registers a new employee. The reference photo is optional; when
// one is supplied and an embedding model is loaded it must contain at
// least one detectable face, and the first detection becomes the
// employee's gallery encoding.
func (s *MonitorService) Enroll(employee *models.Employee, photo []byte) error {
	var (
		encoding  []float32
		photoMeta *media.PhotoMetadata
	)
	if len(photo) > 0 {
		if s.encoder != nil && s.encoder.Enabled {
			var err error
			encoding, photoMeta, err = s.encodePhoto(photo)
			if err != nil {
				return err
			}
		} else {
			log.Printf("monitor: no face encoder loaded, enrolling %s without an encoding", employee.EmployeeID)
		}
	}

	if err := s.employeeRepo.Create(employee); err != nil {
		return err
	}

	if len(photo) > 0 && s.processor != nil {
		if _, err := s.processor.SaveEnrollmentPhoto(employee.EmployeeID, photo); err != nil {
			log.Printf("monitor: failed to keep enrollment photo for %s: %v", employee.EmployeeID, err)
		}
	}

	if len(encoding) == 0 {
		return nil
	}
	if err := s.employeeRepo.SetFaceEncoding(employee.EmployeeID, encoding, photoMeta); err != nil {
		return fmt.Errorf("failed to store face encoding: %w", err)
	}
	if err := s.gallery.Register(employee.EmployeeID, employee.Name, encoding); err != nil {
		// gallery drifted from the database; a full reload repairs it
		log.Printf("monitor: gallery register for %s failed (%v), reloading", employee.EmployeeID, err)
		return s.ReloadGallery()
	}
	return nil
}

// UpdateFacePhoto replaces an employee's reference encoding from a new
// photo and reloads the gallery.
func (s *MonitorService) UpdateFacePhoto(employeeID string, photo []byte) error {
	if _, err := s.employeeRepo.GetByEmployeeID(employeeID); err != nil {
		return err
	}

	encoding, photoMeta, err := s.encodePhoto(photo)
	if err != nil {
		return err
	}

	if err := s.employeeRepo.SetFaceEncoding(employeeID, encoding, photoMeta); err != nil {
		return fmt.Errorf("failed to store face encoding: %w", err)
	}

	if s.processor != nil {
		if _, err := s.processor.SaveEnrollmentPhoto(employeeID, photo); err != nil {
			log.Printf("monitor: failed to keep enrollment photo for %s: %v", employeeID, err)
		}
	}

	return s.ReloadGallery()
}

// encodePhoto decodes a reference photo, finds the face, and extracts
// its encoding together with photo metadata.
func (s *MonitorService) encodePhoto(photo []byte) ([]float32, *media.PhotoMetadata, error) {
	if s.encoder == nil || !s.encoder.Enabled {
		return nil, nil, ErrEncoderUnavailable
	}
	if len(photo) == 0 {
		return nil, nil, ErrInvalidImage
	}

	img, err := gocv.IMDecode(photo, gocv.IMReadColor)
	if err != nil || img.Empty() {
		if err == nil {
			img.Close()
		}
		return nil, nil, ErrInvalidImage
	}
	defer img.Close()

	faces := s.detector.DetectFaces(img)
	if len(faces) == 0 {
		return nil, nil, ErrNoFaceDetected
	}
	if len(faces) > 1 {
		log.Printf("monitor: enrollment photo contains %d faces, using the first", len(faces))
	}

	region := img.Region(faces[0])
	encoding := s.encoder.ExtractEncoding(region)
	region.Close()
	if len(encoding) == 0 {
		return nil, nil, fmt.Errorf("failed to extract face encoding")
	}

	photoMeta, err := media.ExtractPhotoMetadata(photo)
	if err != nil {
		log.Printf("monitor: could not read photo metadata: %v", err)
		photoMeta = nil
	}

	return encoding, photoMeta, nil
}

// ReloadGallery rebuilds the in-memory gallery from the employee store.
func (s *MonitorService) ReloadGallery() error {
	return s.gallery.Load(&gallerySource{repo: s.employeeRepo})
}

// gallerySource adapts the employee repository to the gallery loader.
type gallerySource struct {
	repo repository.EmployeeRepositoryInterface
}

func (g *gallerySource) FetchEnrolledIdentities() ([]vision.GalleryEntry, error) {
	employees, err := g.repo.ListWithEncodings()
	if err != nil {
		return nil, err
	}

	entries := make([]vision.GalleryEntry, 0, len(employees))
	for _, emp := range employees {
		entries = append(entries, vision.GalleryEntry{
			EmployeeID: emp.EmployeeID,
			Name:       emp.Name,
			Encoding:   emp.GetEncoding(),
		})
	}
	return entries, nil
}
