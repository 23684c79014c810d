// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package input

// Top-level user paths.
const (
	LeftHandPath  = "/user/hand/left"
	RightHandPath = "/user/hand/right"

	// TrackerRolePrefix is joined with a role name to form the user
	// path of a body tracker.
	TrackerRolePrefix = "/user/vive_tracker_htcx/role/"

	gripPose = "/input/grip/pose"
)

// TrackerProfile is the interaction profile of body trackers.
const TrackerProfile = "/interaction_profiles/htc/vive_tracker_htcx"

// DefaultRoles are the tracker roles bound when no list is given.
var DefaultRoles = []string{
	"handheld_object",
	"left_foot",
	"right_foot",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_knee",
	"right_knee",
	"waist",
	"chest",
	"camera",
	"keyboard",
}

// Profiles are the controller interaction profiles that get grip pose
// bindings for both hands.
var Profiles = []string{
	"/interaction_profiles/khr/simple_controller",
	"/interaction_profiles/oculus/touch_controller",
	"/interaction_profiles/valve/index_controller",
	"/interaction_profiles/htc/vive_controller",
	"/interaction_profiles/microsoft/motion_controller",
}

// RolePath returns the user path of a tracker role.
func RolePath(role string) string { return TrackerRolePrefix + role }

// handPaths are indexed by posecache.Hand.
var handPaths = [2]string{LeftHandPath, RightHandPath}
