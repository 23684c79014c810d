// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package noop

// Call names one runtime entry point in the call log and in fault
// injection.
type Call string

const (
	CallCreateInstance                    Call = "CreateInstance"
	CallDestroyInstance                   Call = "DestroyInstance"
	CallPollEvent                         Call = "PollEvent"
	CallGetSystem                         Call = "GetSystem"
	CallEnumerateViewConfigurationViews   Call = "EnumerateViewConfigurationViews"
	CallStringToPath                      Call = "StringToPath"
	CallCreateSession                     Call = "CreateSession"
	CallDestroySession                    Call = "DestroySession"
	CallBeginSession                      Call = "BeginSession"
	CallEndSession                        Call = "EndSession"
	CallRequestExitSession                Call = "RequestExitSession"
	CallCreateReferenceSpace              Call = "CreateReferenceSpace"
	CallDestroySpace                      Call = "DestroySpace"
	CallLocateSpace                       Call = "LocateSpace"
	CallEnumerateSwapchainFormats         Call = "EnumerateSwapchainFormats"
	CallCreateSwapchain                   Call = "CreateSwapchain"
	CallDestroySwapchain                  Call = "DestroySwapchain"
	CallEnumerateSwapchainImages          Call = "EnumerateSwapchainImages"
	CallAcquireSwapchainImage             Call = "AcquireSwapchainImage"
	CallWaitSwapchainImage                Call = "WaitSwapchainImage"
	CallReleaseSwapchainImage             Call = "ReleaseSwapchainImage"
	CallWaitFrame                         Call = "WaitFrame"
	CallBeginFrame                        Call = "BeginFrame"
	CallEndFrame                          Call = "EndFrame"
	CallLocateViews                       Call = "LocateViews"
	CallCreateActionSet                   Call = "CreateActionSet"
	CallDestroyActionSet                  Call = "DestroyActionSet"
	CallCreateAction                      Call = "CreateAction"
	CallSuggestInteractionProfileBindings Call = "SuggestInteractionProfileBindings"
	CallAttachSessionActionSets           Call = "AttachSessionActionSets"
	CallCreateActionSpace                 Call = "CreateActionSpace"
	CallSyncActions                       Call = "SyncActions"
	CallGetActionStatePose                Call = "GetActionStatePose"
)
