package services

import (
	"sort"
	"time"

	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
	"fleetbook/internal/pkg/logger"
)

// AvailabilityService answers "can this branch cover N vehicles of
// category C over this window", and when it cannot, suggests
// alternative categories and the next free slots.
type AvailabilityService struct {
	Fleet    FleetStore
	Rates    RateStore
	Trips    TripStore
	Settings *Settings
	Log      logger.Logger
}

type AvailabilityRequest struct {
	BranchID   int64
	CategoryID int64
	Start      time.Time
	End        time.Time
	Quantity   int
}

type Alternative struct {
	CategoryID int64  `json:"categoryId"`
	Name       string `json:"name"`
	Seats      int    `json:"seats"`
	Available  int    `json:"available"`
}

// NextSlot is a point in time when one or more currently busy vehicles
// free up. Until is nil when nothing is scheduled after the slot.
type NextSlot struct {
	From     time.Time  `json:"from"`
	Until    *time.Time `json:"until,omitempty"`
	Vehicles int        `json:"vehicles"`
}

type AvailabilityResult struct {
	Available    bool          `json:"available"`
	Requested    int           `json:"requested"`
	Total        int           `json:"total"`
	Busy         int           `json:"busy"`
	Free         int           `json:"free"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
	NextSlots    []NextSlot    `json:"nextSlots,omitempty"`
}

func (s AvailabilityService) Check(req AvailabilityRequest) (AvailabilityResult, error) {
	if req.Quantity < 1 {
		return AvailabilityResult{}, domain.Validationf("quantity must be at least 1")
	}
	if !req.End.After(req.Start) {
		return AvailabilityResult{}, domain.Validationf("end time must be after start time")
	}
	if _, err := s.Rates.Get(req.CategoryID); err != nil {
		return AvailabilityResult{}, err
	}

	total, busy, err := s.freeCount(req.BranchID, req.CategoryID, req.Start, req.End)
	if err != nil {
		return AvailabilityResult{}, err
	}
	free := total - busy
	if free < 0 {
		free = 0
	}

	res := AvailabilityResult{
		Available: free >= req.Quantity,
		Requested: req.Quantity,
		Total:     total,
		Busy:      busy,
		Free:      free,
	}
	if res.Available {
		return res, nil
	}

	if alts, err := s.alternatives(req); err != nil {
		s.warn("alternative lookup failed", err)
	} else {
		res.Alternatives = alts
	}

	// Next-slot hints make no sense for full-day hires: the vehicle is
	// gone for the day regardless of when it frees up.
	fullDay := req.End.Sub(req.Start).Hours() >= float64(s.Settings.Int(SettingFullDayHireMinHours))
	if !fullDay {
		if slots, err := s.nextSlots(req); err != nil {
			s.warn("next slot lookup failed", err)
		} else {
			res.NextSlots = slots
		}
	}
	return res, nil
}

// freeCount counts the branch's vehicles of a category and how many of
// them are held by an active trip overlapping the window.
func (s AvailabilityService) freeCount(branchID, categoryID int64, start, end time.Time) (total, busy int, err error) {
	vehicles, err := s.Fleet.AvailableVehicles(branchID, categoryID)
	if err != nil {
		return 0, 0, err
	}
	for _, v := range vehicles {
		total++
		held, err := s.vehicleBusy(v.ID, start, end)
		if err != nil {
			return 0, 0, err
		}
		if held {
			busy++
		}
	}
	return total, busy, nil
}

func (s AvailabilityService) vehicleBusy(vehicleID int64, start, end time.Time) (bool, error) {
	trips, err := s.Trips.VehicleTrips(vehicleID)
	if err != nil {
		return false, err
	}
	for _, t := range trips {
		if t.Status.Active() && models.WindowsOverlap(t.StartTime, t.EndTime, &start, &end) {
			return true, nil
		}
	}
	return false, nil
}

// alternatives lists the other active categories that could cover the
// request on their own, smallest vehicles first.
func (s AvailabilityService) alternatives(req AvailabilityRequest) ([]Alternative, error) {
	cats, err := s.Rates.ListActive()
	if err != nil {
		return nil, err
	}
	var out []Alternative
	for _, cat := range cats {
		if cat.ID == req.CategoryID {
			continue
		}
		total, busy, err := s.freeCount(req.BranchID, cat.ID, req.Start, req.End)
		if err != nil {
			return nil, err
		}
		free := total - busy
		if free >= req.Quantity && free > 0 {
			out = append(out, Alternative{
				CategoryID: cat.ID,
				Name:       cat.Name,
				Seats:      cat.Seats,
				Available:  free,
			})
		}
	}
	return out, nil
}

// A vehicle freeing up later than this is no use for the requested
// trip; the hint is dropped.
const nextSlotHorizon = 24 * time.Hour

// nextSlots finds, per busy vehicle, when it frees up after the
// requested start, then merges moments that fall close together.
func (s AvailabilityService) nextSlots(req AvailabilityRequest) ([]NextSlot, error) {
	vehicles, err := s.Fleet.AvailableVehicles(req.BranchID, req.CategoryID)
	if err != nil {
		return nil, err
	}

	horizon := req.Start.Add(nextSlotHorizon)
	var raw []NextSlot
	for _, v := range vehicles {
		trips, err := s.Trips.VehicleTrips(v.ID)
		if err != nil {
			return nil, err
		}
		slot, ok := vehicleNextSlot(trips, req.Start)
		if ok && !slot.From.After(horizon) {
			raw = append(raw, slot)
		}
	}
	sort.Slice(raw, func(i, j int) bool { return raw[i].From.Before(raw[j].From) })

	merge := time.Duration(s.Settings.Int(SettingNextSlotMergeMinutes)) * time.Minute
	limit := s.Settings.Int(SettingNextSlotLimit)

	var out []NextSlot
	for _, slot := range raw {
		if n := len(out); n > 0 && slot.From.Sub(out[n-1].From) <= merge {
			out[n-1].Vehicles++
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, slot)
	}
	return out, nil
}

// vehicleNextSlot computes when a single vehicle becomes free.
// Only vehicles blocked at the requested start produce a slot.
func vehicleNextSlot(trips []models.Trip, requestedStart time.Time) (NextSlot, bool) {
	earliest := requestedStart
	for _, t := range trips {
		if !t.Status.Active() || t.StartTime == nil || t.EndTime == nil {
			continue
		}
		spansStart := !t.StartTime.After(requestedStart) && t.EndTime.After(requestedStart)
		if spansStart && t.EndTime.After(earliest) {
			earliest = *t.EndTime
		}
	}
	if !earliest.After(requestedStart) {
		return NextSlot{}, false
	}

	var until *time.Time
	for _, t := range trips {
		if !t.Status.Active() || t.StartTime == nil || t.EndTime == nil {
			continue
		}
		if t.StartTime.After(earliest) && (until == nil || t.StartTime.Before(*until)) {
			start := *t.StartTime
			until = &start
		}
	}
	return NextSlot{From: earliest, Until: until, Vehicles: 1}, true
}

func (s AvailabilityService) warn(msg string, err error) {
	if s.Log != nil {
		s.Log.Warn(msg, logger.Err(err))
	}
}
