// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package input tracks hand controllers and body trackers through
// OpenXR pose actions and writes their poses into a posecache.Cache.
//
// A System owns one action set with two pose actions: one for the hand
// grips with a sub-path per hand, and one for trackers with a sub-path
// per tracker role. Default bindings are suggested for the common
// interaction profiles listed in Profiles.
//
// Lifecycle follows the session:
//
//	in, err := input.New(rt, instance, cache, input.DefaultRoles)
//	err = in.Attach(session)      // once per session
//	err = in.Update(posecache.Late, appSpace, displayTime) // once per frame
//	in.Detach()                   // session teardown
//	in.Destroy()                  // instance teardown
//
// A pose counts as valid only when the runtime sets both the position
// and orientation validity bits. Invalid results keep the last valid
// pose in the cache and only clear its tracked flag.
package input
