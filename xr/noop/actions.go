// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package noop

import "github.com/gogpu/xrframe/xr"

// CreateActionSet implements xr.Runtime.
func (r *Runtime) CreateActionSet(h xr.Instance, info *xr.ActionSetCreateInfo) (xr.ActionSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallCreateActionSet); err != nil {
		return 0, err
	}
	if _, err := r.instance(h); err != nil {
		return 0, err
	}
	if err := tag(info.Type, xr.TypeActionSetCreateInfo); err != nil {
		return 0, err
	}
	if info.Name == "" {
		return 0, xr.ErrorValidationFailure
	}
	set := xr.ActionSet(r.handle())
	r.actionSets[set] = h
	return set, nil
}

// DestroyActionSet implements xr.Runtime.
func (r *Runtime) DestroyActionSet(set xr.ActionSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallDestroyActionSet); err != nil {
		return err
	}
	if _, ok := r.actionSets[set]; !ok {
		return xr.ErrorHandleInvalid
	}
	r.destroyActionSet(set)
	return nil
}

func (r *Runtime) destroyActionSet(set xr.ActionSet) {
	for a, st := range r.actions {
		if st.set == set {
			delete(r.actions, a)
		}
	}
	delete(r.actionSets, set)
}

// CreateAction implements xr.Runtime. Only pose actions are supported.
func (r *Runtime) CreateAction(set xr.ActionSet, info *xr.ActionCreateInfo) (xr.Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallCreateAction); err != nil {
		return 0, err
	}
	owner, ok := r.actionSets[set]
	if !ok {
		return 0, xr.ErrorHandleInvalid
	}
	if _, err := r.instance(owner); err != nil {
		return 0, err
	}
	if err := tag(info.Type, xr.TypeActionCreateInfo); err != nil {
		return 0, err
	}
	if info.ActionType != xr.ActionTypePoseInput {
		return 0, xr.ErrorFeatureUnsupported
	}
	for _, p := range info.SubactionPaths {
		if _, ok := r.pathNames[p]; !ok {
			return 0, xr.ErrorPathInvalid
		}
	}
	a := xr.Action(r.handle())
	r.actions[a] = &actionState{
		set:        set,
		name:       info.Name,
		subactions: append([]xr.Path(nil), info.SubactionPaths...),
	}
	return a, nil
}

// SuggestInteractionProfileBindings implements xr.Runtime.
func (r *Runtime) SuggestInteractionProfileBindings(h xr.Instance, info *xr.InteractionProfileSuggestedBinding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallSuggestInteractionProfileBindings); err != nil {
		return err
	}
	if _, err := r.instance(h); err != nil {
		return err
	}
	if err := tag(info.Type, xr.TypeInteractionProfileSuggestedBinding); err != nil {
		return err
	}
	profile, ok := r.pathNames[info.InteractionProfile]
	if !ok {
		return xr.ErrorPathInvalid
	}
	for _, b := range info.SuggestedBindings {
		if _, ok := r.actions[b.Action]; !ok {
			return xr.ErrorHandleInvalid
		}
		if _, ok := r.pathNames[b.Binding]; !ok {
			return xr.ErrorPathInvalid
		}
	}
	r.suggested[profile] = len(info.SuggestedBindings)
	return nil
}

// AttachSessionActionSets implements xr.Runtime.
func (r *Runtime) AttachSessionActionSets(s xr.Session, info *xr.SessionActionSetsAttachInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallAttachSessionActionSets); err != nil {
		return err
	}
	st, err := r.session(s)
	if err != nil {
		return err
	}
	if err := tag(info.Type, xr.TypeSessionActionSetsAttachInfo); err != nil {
		return err
	}
	if st.attached {
		return xr.ErrorActionsetsAlreadyAttached
	}
	for _, set := range info.ActionSets {
		if _, ok := r.actionSets[set]; !ok {
			return xr.ErrorHandleInvalid
		}
	}
	st.attached = true
	return nil
}

// CreateActionSpace implements xr.Runtime.
func (r *Runtime) CreateActionSpace(s xr.Session, info *xr.ActionSpaceCreateInfo) (xr.Space, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallCreateActionSpace); err != nil {
		return 0, err
	}
	if _, err := r.session(s); err != nil {
		return 0, err
	}
	if err := tag(info.Type, xr.TypeActionSpaceCreateInfo); err != nil {
		return 0, err
	}
	a, ok := r.actions[info.Action]
	if !ok {
		return 0, xr.ErrorHandleInvalid
	}
	if !hasPath(a.subactions, info.SubactionPath) {
		return 0, xr.ErrorPathInvalid
	}
	h := xr.Space(r.handle())
	r.spaces[h] = &spaceState{session: s, action: info.Action, path: info.SubactionPath}
	return h, nil
}

func hasPath(paths []xr.Path, p xr.Path) bool {
	if p == 0 {
		return true
	}
	for _, q := range paths {
		if q == p {
			return true
		}
	}
	return false
}

// SyncActions implements xr.Runtime.
func (r *Runtime) SyncActions(s xr.Session, info *xr.ActionsSyncInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallSyncActions); err != nil {
		return err
	}
	st, err := r.session(s)
	if err != nil {
		return err
	}
	if err := tag(info.Type, xr.TypeActionsSyncInfo); err != nil {
		return err
	}
	if !st.attached {
		return xr.ErrorActionsetNotAttached
	}
	if st.state != xr.SessionStateFocused {
		return xr.SessionNotFocused
	}
	return nil
}

// GetActionStatePose implements xr.Runtime. An action is active for a
// sub-path while the simulated device on that path is tracked.
func (r *Runtime) GetActionStatePose(s xr.Session, info *xr.ActionStateGetInfo, state *xr.ActionStatePose) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallGetActionStatePose); err != nil {
		return err
	}
	st, err := r.session(s)
	if err != nil {
		return err
	}
	if err := tag(info.Type, xr.TypeActionStateGetInfo); err != nil {
		return err
	}
	if err := tag(state.Type, xr.TypeActionStatePose); err != nil {
		return err
	}
	if !st.attached {
		return xr.ErrorActionsetNotAttached
	}
	a, ok := r.actions[info.Action]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	if !hasPath(a.subactions, info.SubactionPath) {
		return xr.ErrorPathInvalid
	}
	state.IsActive = r.poseValid[r.pathNames[info.SubactionPath]]
	return nil
}
