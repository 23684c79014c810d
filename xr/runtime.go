// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

// Runtime is the subset of the OpenXR API used by xrframe.
//
// Every method returns nil on XR_SUCCESS and a Result otherwise. Input
// structs must carry the matching StructureType; implementations reject
// untagged structs with ErrorValidationFailure.
//
// Frame calls follow the runtime's strict ordering contract:
// WaitFrame, BeginFrame, LocateViews, then per swapchain Acquire, Wait,
// Release, and finally EndFrame, once per frame.
type Runtime interface {
	CreateInstance(info *InstanceCreateInfo) (Instance, error)
	DestroyInstance(instance Instance) error

	// PollEvent fills ev with the next queued event. It reports false
	// when no event is available.
	PollEvent(instance Instance, ev *EventDataBuffer) (bool, error)

	GetSystem(instance Instance, info *SystemGetInfo) (SystemID, error)
	EnumerateViewConfigurationViews(instance Instance, system SystemID, viewType ViewConfigurationType) ([]ViewConfigurationView, error)
	StringToPath(instance Instance, path string) (Path, error)

	CreateSession(instance Instance, info *SessionCreateInfo) (Session, error)
	DestroySession(session Session) error
	BeginSession(session Session, info *SessionBeginInfo) error
	EndSession(session Session) error
	RequestExitSession(session Session) error

	CreateReferenceSpace(session Session, info *ReferenceSpaceCreateInfo) (Space, error)
	DestroySpace(space Space) error
	LocateSpace(space, base Space, time Time, location *SpaceLocation) error

	EnumerateSwapchainFormats(session Session) ([]int64, error)
	CreateSwapchain(session Session, info *SwapchainCreateInfo) (Swapchain, error)
	DestroySwapchain(swapchain Swapchain) error
	EnumerateSwapchainImages(swapchain Swapchain) ([]SwapchainImage, error)
	AcquireSwapchainImage(swapchain Swapchain, info *SwapchainImageAcquireInfo) (uint32, error)
	WaitSwapchainImage(swapchain Swapchain, info *SwapchainImageWaitInfo) error
	ReleaseSwapchainImage(swapchain Swapchain, info *SwapchainImageReleaseInfo) error

	WaitFrame(session Session, info *FrameWaitInfo, state *FrameState) error
	BeginFrame(session Session, info *FrameBeginInfo) error
	EndFrame(session Session, info *FrameEndInfo) error

	// LocateViews fills views, which must be pre-tagged with TypeView,
	// and returns the number of views written.
	LocateViews(session Session, info *ViewLocateInfo, state *ViewState, views []View) (int, error)

	CreateActionSet(instance Instance, info *ActionSetCreateInfo) (ActionSet, error)
	DestroyActionSet(set ActionSet) error
	CreateAction(set ActionSet, info *ActionCreateInfo) (Action, error)
	SuggestInteractionProfileBindings(instance Instance, info *InteractionProfileSuggestedBinding) error
	AttachSessionActionSets(session Session, info *SessionActionSetsAttachInfo) error
	CreateActionSpace(session Session, info *ActionSpaceCreateInfo) (Space, error)
	SyncActions(session Session, info *ActionsSyncInfo) error
	GetActionStatePose(session Session, info *ActionStateGetInfo, state *ActionStatePose) error
}
