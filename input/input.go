// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package input

import (
	"errors"
	"fmt"

	"github.com/gogpu/xrframe/internal/xrlog"
	"github.com/gogpu/xrframe/linear"
	"github.com/gogpu/xrframe/posecache"
	"github.com/gogpu/xrframe/xr"
)

// ErrNotAttached is returned by Update before Attach.
var ErrNotAttached = errors.New("input: action set not attached to a session")

type device struct {
	path  xr.Path
	space xr.Space
}

// System is the input subsystem of one instance.
type System struct {
	rt       xr.Runtime
	instance xr.Instance
	cache    *posecache.Cache

	set      xr.ActionSet
	hands    xr.Action
	trackers xr.Action

	handDevs [2]device
	roles    []string
	roleDevs []device

	session xr.Session
}

// New creates the action set and its pose actions on instance and
// suggests default bindings. Roles lists the tracker roles to track;
// nil selects DefaultRoles.
func New(rt xr.Runtime, instance xr.Instance, cache *posecache.Cache, roles []string) (*System, error) {
	if roles == nil {
		roles = DefaultRoles
	}
	s := &System{
		rt:       rt,
		instance: instance,
		cache:    cache,
		roles:    append([]string(nil), roles...),
		roleDevs: make([]device, len(roles)),
	}
	if err := s.create(); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

func (s *System) path(p string) (xr.Path, error) {
	h, err := s.rt.StringToPath(s.instance, p)
	if err != nil {
		return 0, fmt.Errorf("input: path %q: %w", p, err)
	}
	return h, nil
}

func (s *System) create() error {
	set, err := s.rt.CreateActionSet(s.instance, &xr.ActionSetCreateInfo{
		Type:          xr.TypeActionSetCreateInfo,
		Name:          "xrframe_poses",
		LocalizedName: "Poses",
	})
	if err != nil {
		return fmt.Errorf("input: create action set: %w", err)
	}
	s.set = set

	hands := make([]xr.Path, 0, len(handPaths))
	for i, p := range handPaths {
		h, err := s.path(p)
		if err != nil {
			return err
		}
		s.handDevs[i].path = h
		hands = append(hands, h)
	}
	rolePaths := make([]xr.Path, 0, len(s.roles))
	for i, role := range s.roles {
		h, err := s.path(RolePath(role))
		if err != nil {
			return err
		}
		s.roleDevs[i].path = h
		rolePaths = append(rolePaths, h)
	}

	s.hands, err = s.rt.CreateAction(set, &xr.ActionCreateInfo{
		Type:           xr.TypeActionCreateInfo,
		Name:           "hand_pose",
		ActionType:     xr.ActionTypePoseInput,
		SubactionPaths: hands,
		LocalizedName:  "Hand Pose",
	})
	if err != nil {
		return fmt.Errorf("input: create hand action: %w", err)
	}
	if len(rolePaths) > 0 {
		s.trackers, err = s.rt.CreateAction(set, &xr.ActionCreateInfo{
			Type:           xr.TypeActionCreateInfo,
			Name:           "tracker_pose",
			ActionType:     xr.ActionTypePoseInput,
			SubactionPaths: rolePaths,
			LocalizedName:  "Tracker Pose",
		})
		if err != nil {
			return fmt.Errorf("input: create tracker action: %w", err)
		}
	}
	return s.suggest()
}

// suggest sends the default bindings. A profile the runtime rejects is
// logged and skipped; the remaining profiles still apply.
func (s *System) suggest() error {
	for _, profile := range Profiles {
		var bindings []xr.ActionSuggestedBinding
		for _, hand := range handPaths {
			b, err := s.path(hand + gripPose)
			if err != nil {
				return err
			}
			bindings = append(bindings, xr.ActionSuggestedBinding{Action: s.hands, Binding: b})
		}
		s.suggestProfile(profile, bindings)
	}
	if s.trackers == 0 {
		return nil
	}
	bindings := make([]xr.ActionSuggestedBinding, 0, len(s.roles))
	for _, role := range s.roles {
		b, err := s.path(RolePath(role) + gripPose)
		if err != nil {
			return err
		}
		bindings = append(bindings, xr.ActionSuggestedBinding{Action: s.trackers, Binding: b})
	}
	s.suggestProfile(TrackerProfile, bindings)
	return nil
}

func (s *System) suggestProfile(profile string, bindings []xr.ActionSuggestedBinding) {
	p, err := s.path(profile)
	if err == nil {
		err = s.rt.SuggestInteractionProfileBindings(s.instance, &xr.InteractionProfileSuggestedBinding{
			Type:               xr.TypeInteractionProfileSuggestedBinding,
			InteractionProfile: p,
			SuggestedBindings:  bindings,
		})
	}
	if err != nil {
		xrlog.Logger().Warn("input: bindings rejected", "profile", profile, "err", err)
	}
}

// Attach attaches the action set to session and creates one action
// space per hand and tracker role.
func (s *System) Attach(session xr.Session) error {
	if s.session != 0 {
		s.Detach()
	}
	err := s.rt.AttachSessionActionSets(session, &xr.SessionActionSetsAttachInfo{
		Type:       xr.TypeSessionActionSetsAttachInfo,
		ActionSets: []xr.ActionSet{s.set},
	})
	if err != nil {
		return fmt.Errorf("input: attach: %w", err)
	}
	s.session = session
	for i := range s.handDevs {
		if err := s.createSpace(s.hands, &s.handDevs[i]); err != nil {
			s.Detach()
			return err
		}
	}
	for i := range s.roleDevs {
		if err := s.createSpace(s.trackers, &s.roleDevs[i]); err != nil {
			s.Detach()
			return err
		}
	}
	xrlog.Logger().Debug("input: attached", "hands", len(s.handDevs), "trackers", len(s.roleDevs))
	return nil
}

func (s *System) createSpace(a xr.Action, d *device) error {
	sp, err := s.rt.CreateActionSpace(s.session, &xr.ActionSpaceCreateInfo{
		Type:              xr.TypeActionSpaceCreateInfo,
		Action:            a,
		SubactionPath:     d.path,
		PoseInActionSpace: xr.IdentityPose(),
	})
	if err != nil {
		return fmt.Errorf("input: action space: %w", err)
	}
	d.space = sp
	return nil
}

// Detach destroys the action spaces of the current session. The action
// set stays usable for the next session.
func (s *System) Detach() {
	destroy := func(d *device) {
		if d.space == 0 {
			return
		}
		if err := s.rt.DestroySpace(d.space); err != nil {
			xrlog.Logger().Debug("input: destroy space", "err", err)
		}
		d.space = 0
	}
	for i := range s.handDevs {
		destroy(&s.handDevs[i])
	}
	for i := range s.roleDevs {
		destroy(&s.roleDevs[i])
	}
	s.session = 0
}

// Destroy releases the action set. Call Detach first when a session is
// still attached.
func (s *System) Destroy() {
	s.Detach()
	if s.set == 0 {
		return
	}
	if err := s.rt.DestroyActionSet(s.set); err != nil {
		xrlog.Logger().Debug("input: destroy action set", "err", err)
	}
	s.set, s.hands, s.trackers = 0, 0, 0
}

// Roles returns the tracked roles.
func (s *System) Roles() []string { return s.roles }

// Update syncs actions and locates every device against base at
// displayTime, storing results under timing t. Devices that are
// inactive or fail to locate keep their last valid pose.
//
// Errors that invalidate the session are returned so the caller can
// report them; per-device failures are logged.
func (s *System) Update(t posecache.Timing, base xr.Space, displayTime xr.Time) error {
	if s.session == 0 {
		return ErrNotAttached
	}
	err := s.rt.SyncActions(s.session, &xr.ActionsSyncInfo{
		Type:             xr.TypeActionsSyncInfo,
		ActiveActionSets: []xr.ActiveActionSet{{ActionSet: s.set}},
	})
	if err != nil {
		s.markUntracked(t)
		if xr.Succeeded(err) && !xr.IsSessionLoss(err) {
			// Unfocused: the runtime reports no input.
			return nil
		}
		return fmt.Errorf("input: sync: %w", err)
	}

	var errs []error
	for i := range s.handDevs {
		pose, valid, err := s.locate(s.hands, &s.handDevs[i], base, displayTime)
		if err != nil {
			errs = append(errs, err)
		}
		s.cache.StoreController(t, posecache.Hand(i), pose, valid)
	}
	for i, role := range s.roles {
		pose, valid, err := s.locate(s.trackers, &s.roleDevs[i], base, displayTime)
		if err != nil {
			errs = append(errs, err)
		}
		s.cache.StoreTracker(t, role, pose, valid)
	}
	return lossOnly(errs)
}

func (s *System) locate(a xr.Action, d *device, base xr.Space, displayTime xr.Time) (pose linear.M4, valid bool, err error) {
	state := xr.ActionStatePose{Type: xr.TypeActionStatePose}
	err = s.rt.GetActionStatePose(s.session, &xr.ActionStateGetInfo{
		Type:          xr.TypeActionStateGetInfo,
		Action:        a,
		SubactionPath: d.path,
	}, &state)
	if err != nil || !state.IsActive || d.space == 0 {
		return pose, false, err
	}
	loc := xr.SpaceLocation{Type: xr.TypeSpaceLocation}
	if err := s.rt.LocateSpace(d.space, base, displayTime, &loc); err != nil {
		return pose, false, err
	}
	if !loc.LocationFlags.PoseValid() {
		return pose, false, nil
	}
	return posecache.PoseMatrix(loc.Pose), true, nil
}

func (s *System) markUntracked(t posecache.Timing) {
	var zero linear.M4
	for i := range s.handDevs {
		s.cache.StoreController(t, posecache.Hand(i), zero, false)
	}
	for _, role := range s.roles {
		s.cache.StoreTracker(t, role, zero, false)
	}
}

// lossOnly logs per-device failures and returns the ones that
// invalidate the session or instance.
func lossOnly(errs []error) error {
	var loss []error
	for _, err := range errs {
		if xr.IsSessionLoss(err) || xr.IsInstanceLoss(err) || xr.IsRuntimeUnavailable(err) {
			loss = append(loss, err)
			continue
		}
		xrlog.Logger().Debug("input: locate failed", "err", err)
	}
	return errors.Join(loss...)
}
