// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

// Opaque runtime handles. The zero value is XR_NULL_HANDLE.
type (
	Instance  uint64
	Session   uint64
	Space     uint64
	Swapchain uint64
	ActionSet uint64
	Action    uint64
	SystemID  uint64
	Path      uint64
)

// Time is a runtime timestamp in nanoseconds.
type Time int64

// Duration is a runtime interval in nanoseconds.
type Duration int64

// InfiniteDuration is XR_INFINITE_DURATION.
const InfiniteDuration Duration = 0x7fffffffffffffff

// StructureType is the type tag every input and output struct carries.
type StructureType uint32

const (
	TypeUnknown                            StructureType = 0
	TypeInstanceCreateInfo                 StructureType = 3
	TypeSystemGetInfo                      StructureType = 4
	TypeViewLocateInfo                     StructureType = 6
	TypeView                               StructureType = 7
	TypeSessionCreateInfo                  StructureType = 8
	TypeSwapchainCreateInfo                StructureType = 9
	TypeSessionBeginInfo                   StructureType = 10
	TypeViewState                          StructureType = 11
	TypeFrameEndInfo                       StructureType = 12
	TypeEventDataBuffer                    StructureType = 16
	TypeEventDataInstanceLossPending       StructureType = 17
	TypeEventDataSessionStateChanged       StructureType = 18
	TypeActionStatePose                    StructureType = 27
	TypeActionSetCreateInfo                StructureType = 28
	TypeActionCreateInfo                   StructureType = 29
	TypeFrameWaitInfo                      StructureType = 33
	TypeCompositionLayerProjection         StructureType = 35
	TypeReferenceSpaceCreateInfo           StructureType = 37
	TypeActionSpaceCreateInfo              StructureType = 38
	TypeViewConfigurationView              StructureType = 41
	TypeSpaceLocation                      StructureType = 42
	TypeFrameState                         StructureType = 44
	TypeFrameBeginInfo                     StructureType = 46
	TypeCompositionLayerProjectionView     StructureType = 48
	TypeEventDataEventsLost                StructureType = 49
	TypeInteractionProfileSuggestedBinding StructureType = 51
	TypeSwapchainImageAcquireInfo          StructureType = 55
	TypeSwapchainImageWaitInfo             StructureType = 56
	TypeSwapchainImageReleaseInfo          StructureType = 57
	TypeActionStateGetInfo                 StructureType = 58
	TypeSessionActionSetsAttachInfo        StructureType = 60
	TypeActionsSyncInfo                    StructureType = 61
	TypeGraphicsBindingOpenGLXlib          StructureType = 1000023001
	TypeSwapchainImageOpenGL               StructureType = 1000023004
	TypeGraphicsBindingVulkan              StructureType = 1000025000
	TypeSwapchainImageVulkan               StructureType = 1000025001
)

// FormFactor selects the kind of system requested from the runtime.
type FormFactor uint32

// FormFactorHeadMountedDisplay is XR_FORM_FACTOR_HEAD_MOUNTED_DISPLAY.
const FormFactorHeadMountedDisplay FormFactor = 1

// ViewConfigurationType selects the view layout.
type ViewConfigurationType uint32

const (
	ViewConfigurationPrimaryMono   ViewConfigurationType = 1
	ViewConfigurationPrimaryStereo ViewConfigurationType = 2
)

// EnvironmentBlendMode controls how layers blend with the real world.
type EnvironmentBlendMode uint32

// EnvironmentBlendModeOpaque is XR_ENVIRONMENT_BLEND_MODE_OPAQUE.
const EnvironmentBlendModeOpaque EnvironmentBlendMode = 1

// ReferenceSpaceType identifies a reference space.
type ReferenceSpaceType uint32

const (
	ReferenceSpaceView  ReferenceSpaceType = 1
	ReferenceSpaceLocal ReferenceSpaceType = 2
	ReferenceSpaceStage ReferenceSpaceType = 3
)

// SessionState is the runtime-reported session lifecycle state.
type SessionState uint32

const (
	SessionStateUnknown      SessionState = 0
	SessionStateIdle         SessionState = 1
	SessionStateReady        SessionState = 2
	SessionStateSynchronized SessionState = 3
	SessionStateVisible      SessionState = 4
	SessionStateFocused      SessionState = 5
	SessionStateStopping     SessionState = 6
	SessionStateLossPending  SessionState = 7
	SessionStateExiting      SessionState = 8
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case SessionStateIdle:
		return "Idle"
	case SessionStateReady:
		return "Ready"
	case SessionStateSynchronized:
		return "Synchronized"
	case SessionStateVisible:
		return "Visible"
	case SessionStateFocused:
		return "Focused"
	case SessionStateStopping:
		return "Stopping"
	case SessionStateLossPending:
		return "LossPending"
	case SessionStateExiting:
		return "Exiting"
	default:
		return "Unknown"
	}
}

// SpaceLocationFlags report which parts of a located pose are usable.
// The same bits are used for view state flags.
type SpaceLocationFlags uint64

const (
	LocationOrientationValid   SpaceLocationFlags = 0x1
	LocationPositionValid      SpaceLocationFlags = 0x2
	LocationOrientationTracked SpaceLocationFlags = 0x4
	LocationPositionTracked    SpaceLocationFlags = 0x8
)

// PoseValid reports whether both orientation and position are valid.
func (f SpaceLocationFlags) PoseValid() bool {
	const both = LocationOrientationValid | LocationPositionValid
	return f&both == both
}

// SwapchainUsageFlags describe how swapchain images are used.
type SwapchainUsageFlags uint64

const (
	SwapchainUsageColorAttachment SwapchainUsageFlags = 0x01
	SwapchainUsageDepthStencil    SwapchainUsageFlags = 0x02
	SwapchainUsageTransferDst     SwapchainUsageFlags = 0x10
	SwapchainUsageSampled         SwapchainUsageFlags = 0x20
)

// ActionType is the type of an input action.
type ActionType uint32

// ActionTypePoseInput is XR_ACTION_TYPE_POSE_INPUT.
const ActionTypePoseInput ActionType = 4

// Vector3f is a 3D vector.
type Vector3f struct {
	X, Y, Z float32
}

// Quaternionf is a rotation quaternion.
type Quaternionf struct {
	X, Y, Z, W float32
}

// Posef is a rigid transform.
type Posef struct {
	Orientation Quaternionf
	Position    Vector3f
}

// IdentityPose returns a pose with no rotation and no translation.
func IdentityPose() Posef {
	return Posef{Orientation: Quaternionf{W: 1}}
}

// Fovf holds the four asymmetric field-of-view half angles in radians.
// Left and Down are usually negative.
type Fovf struct {
	AngleLeft, AngleRight, AngleUp, AngleDown float32
}

// Offset2Di is an integer 2D offset.
type Offset2Di struct {
	X, Y int32
}

// Extent2Di is an integer 2D size.
type Extent2Di struct {
	Width, Height int32
}

// Rect2Di is an integer rectangle.
type Rect2Di struct {
	Offset Offset2Di
	Extent Extent2Di
}

// InstanceCreateInfo describes a new instance.
type InstanceCreateInfo struct {
	Type              StructureType
	ApplicationName   string
	EngineName        string
	EnabledExtensions []string
}

// SystemGetInfo selects a system.
type SystemGetInfo struct {
	Type       StructureType
	FormFactor FormFactor
}

// ViewConfigurationView holds the runtime-recommended per-view limits.
type ViewConfigurationView struct {
	Type                            StructureType
	RecommendedImageRectWidth       uint32
	MaxImageRectWidth               uint32
	RecommendedImageRectHeight      uint32
	MaxImageRectHeight              uint32
	RecommendedSwapchainSampleCount uint32
	MaxSwapchainSampleCount         uint32
}

// GraphicsBindingVulkan binds a Vulkan device into a session.
type GraphicsBindingVulkan struct {
	Type             StructureType
	Instance         uintptr
	PhysicalDevice   uintptr
	Device           uintptr
	QueueFamilyIndex uint32
	QueueIndex       uint32
}

// GraphicsBindingOpenGL binds a current OpenGL context into a session.
type GraphicsBindingOpenGL struct {
	Type     StructureType
	Display  uintptr
	Drawable uintptr
	Context  uintptr
}

// SessionCreateInfo describes a new session. Next holds the
// backend-specific graphics binding struct.
type SessionCreateInfo struct {
	Type     StructureType
	Next     any
	SystemID SystemID
}

// SessionBeginInfo starts a session.
type SessionBeginInfo struct {
	Type                         StructureType
	PrimaryViewConfigurationType ViewConfigurationType
}

// ReferenceSpaceCreateInfo describes a reference space.
type ReferenceSpaceCreateInfo struct {
	Type                 StructureType
	ReferenceSpaceType   ReferenceSpaceType
	PoseInReferenceSpace Posef
}

// SwapchainCreateInfo describes a swapchain. Format is the native format
// value (a VkFormat or a GL internal format).
type SwapchainCreateInfo struct {
	Type        StructureType
	UsageFlags  SwapchainUsageFlags
	Format      int64
	SampleCount uint32
	Width       uint32
	Height      uint32
	FaceCount   uint32
	ArraySize   uint32
	MipCount    uint32
}

// SwapchainImage is one runtime-owned swapchain image. Image is the
// native handle: a VkImage or a GL texture name.
type SwapchainImage struct {
	Type  StructureType
	Image uint64
}

// SwapchainImageAcquireInfo acquires the next image.
type SwapchainImageAcquireInfo struct {
	Type StructureType
}

// SwapchainImageWaitInfo waits for the acquired image.
type SwapchainImageWaitInfo struct {
	Type    StructureType
	Timeout Duration
}

// SwapchainImageReleaseInfo releases the acquired image.
type SwapchainImageReleaseInfo struct {
	Type StructureType
}

// EventDataBuffer receives one event per poll. The runtime overwrites
// the buffer in place and sets Type to the concrete event type, so the
// caller resets Type to TypeEventDataBuffer before every poll.
type EventDataBuffer struct {
	Type StructureType

	// Session state changed.
	Session Session
	State   SessionState
	Time    Time

	// Instance loss pending.
	LossTime Time

	// Events lost.
	LostEventCount uint32
}

// FrameWaitInfo is the input of WaitFrame.
type FrameWaitInfo struct {
	Type StructureType
}

// FrameState is the output of WaitFrame.
type FrameState struct {
	Type                   StructureType
	PredictedDisplayTime   Time
	PredictedDisplayPeriod Duration
	ShouldRender           bool
}

// FrameBeginInfo is the input of BeginFrame.
type FrameBeginInfo struct {
	Type StructureType
}

// CompositionLayer is a layer submitted with EndFrame.
type CompositionLayer interface {
	LayerType() StructureType
}

// SwapchainSubImage selects a region of a swapchain image.
type SwapchainSubImage struct {
	Swapchain       Swapchain
	ImageRect       Rect2Di
	ImageArrayIndex uint32
}

// CompositionLayerProjectionView is one eye of a projection layer.
type CompositionLayerProjectionView struct {
	Type     StructureType
	Pose     Posef
	Fov      Fovf
	SubImage SwapchainSubImage
}

// CompositionLayerProjection is a stereo projection layer.
type CompositionLayerProjection struct {
	Type  StructureType
	Space Space
	Views []CompositionLayerProjectionView
}

// LayerType implements CompositionLayer.
func (l *CompositionLayerProjection) LayerType() StructureType { return l.Type }

// FrameEndInfo is the input of EndFrame.
type FrameEndInfo struct {
	Type                 StructureType
	DisplayTime          Time
	EnvironmentBlendMode EnvironmentBlendMode
	Layers               []CompositionLayer
}

// ViewLocateInfo is the input of LocateViews.
type ViewLocateInfo struct {
	Type                  StructureType
	ViewConfigurationType ViewConfigurationType
	DisplayTime           Time
	Space                 Space
}

// ViewState is the output of LocateViews.
type ViewState struct {
	Type           StructureType
	ViewStateFlags SpaceLocationFlags
}

// View is one located view.
type View struct {
	Type StructureType
	Pose Posef
	Fov  Fovf
}

// SpaceLocation is the output of LocateSpace.
type SpaceLocation struct {
	Type          StructureType
	LocationFlags SpaceLocationFlags
	Pose          Posef
}

// ActionSetCreateInfo describes an action set.
type ActionSetCreateInfo struct {
	Type          StructureType
	Name          string
	LocalizedName string
	Priority      uint32
}

// ActionCreateInfo describes an action.
type ActionCreateInfo struct {
	Type           StructureType
	Name           string
	ActionType     ActionType
	SubactionPaths []Path
	LocalizedName  string
}

// ActionSuggestedBinding pairs an action with an input path.
type ActionSuggestedBinding struct {
	Action  Action
	Binding Path
}

// InteractionProfileSuggestedBinding suggests bindings for one profile.
type InteractionProfileSuggestedBinding struct {
	Type               StructureType
	InteractionProfile Path
	SuggestedBindings  []ActionSuggestedBinding
}

// SessionActionSetsAttachInfo attaches action sets to a session.
type SessionActionSetsAttachInfo struct {
	Type       StructureType
	ActionSets []ActionSet
}

// ActionSpaceCreateInfo creates a space tracking a pose action.
type ActionSpaceCreateInfo struct {
	Type              StructureType
	Action            Action
	SubactionPath     Path
	PoseInActionSpace Posef
}

// ActiveActionSet selects an action set to sync.
type ActiveActionSet struct {
	ActionSet     ActionSet
	SubactionPath Path
}

// ActionsSyncInfo is the input of SyncActions.
type ActionsSyncInfo struct {
	Type             StructureType
	ActiveActionSets []ActiveActionSet
}

// ActionStateGetInfo selects an action state.
type ActionStateGetInfo struct {
	Type          StructureType
	Action        Action
	SubactionPath Path
}

// ActionStatePose is the state of a pose action.
type ActionStatePose struct {
	Type     StructureType
	IsActive bool
}
