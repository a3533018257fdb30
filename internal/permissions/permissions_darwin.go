//go:build darwin

package permissions

/*
#cgo LDFLAGS: -framework AVFoundation
#import <AVFoundation/AVFoundation.h>

int checkMicrophonePermission() {
    AVAuthorizationStatus status = [AVCaptureDevice authorizationStatusForMediaType:AVMediaTypeAudio];
    return (int)status;
}
*/
import "C"

// CheckMicrophone returns the current microphone permission status
func CheckMicrophone() (Status, error) {
	return Status(C.checkMicrophonePermission()), nil
}
